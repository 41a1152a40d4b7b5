// Package report renders verdicts as ordered text, structured records, and
// CSV rows. Text output colorizes PASS/FAIL only when the sink is an
// interactive terminal; redirected output stays plain for downstream
// tooling.
package report
