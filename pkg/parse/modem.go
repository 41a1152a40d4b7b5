package parse

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/msense/atharness/pkg/query"
)

// registrationText maps +CEREG / %XMONITOR registration codes to prose.
var registrationText = map[int]string{
	0: "not registered",
	1: "registered - home",
	2: "searching",
	3: "denied",
	4: "unknown",
	5: "registered - roaming",
}

func registrationStatus(code int) string {
	if s, ok := registrationText[code]; ok {
		return s
	}
	return "unknown"
}

var (
	ceregPattern       = regexp.MustCompile(`\+CEREG: \d+,(\d+)`)
	xvbatPattern       = regexp.MustCompile(`%XVBAT: (\d+)`)
	xtempPattern       = regexp.MustCompile(`%XTEMP: (-?\d+)`)
	xsystemmodePattern = regexp.MustCompile(`%XSYSTEMMODE: (\d),(\d),(\d),(\d)`)
)

// ParseCEREG extracts the registration status from a +CEREG? reply.
func ParseCEREG(res query.ATResult) (Parsed, error) {
	m := ceregPattern.FindStringSubmatch(res.Reply)
	if m == nil {
		return Parsed{}, fmt.Errorf("unparseable +CEREG reply: %q", res.Reply)
	}
	stat, _ := strconv.Atoi(m[1])
	return Parsed{
		Fields:      map[string]any{"value": stat, "reg_status": stat},
		Description: registrationStatus(stat),
	}, nil
}

// ParseXVBAT extracts the supply voltage in millivolts from %XVBAT.
func ParseXVBAT(res query.ATResult) (Parsed, error) {
	m := xvbatPattern.FindStringSubmatch(res.Reply)
	if m == nil {
		return Parsed{}, fmt.Errorf("unparseable %%XVBAT reply: %q", res.Reply)
	}
	mv, _ := strconv.Atoi(m[1])
	return Parsed{
		Fields:      map[string]any{"value": mv},
		Description: fmt.Sprintf("%.2f V", float64(mv)/1000),
	}, nil
}

// ParseXTEMP extracts the modem temperature in degrees Celsius.
func ParseXTEMP(res query.ATResult) (Parsed, error) {
	m := xtempPattern.FindStringSubmatch(res.Reply)
	if m == nil {
		return Parsed{}, fmt.Errorf("unparseable %%XTEMP reply: %q", res.Reply)
	}
	t, _ := strconv.Atoi(m[1])
	return Parsed{
		Fields:      map[string]any{"value": t},
		Description: fmt.Sprintf("%d C", t),
	}, nil
}

// ParseXSystemMode extracts the enabled radio systems from %XSYSTEMMODE.
func ParseXSystemMode(res query.ATResult) (Parsed, error) {
	m := xsystemmodePattern.FindStringSubmatch(res.Reply)
	if m == nil {
		return Parsed{}, fmt.Errorf("unparseable %%XSYSTEMMODE reply: %q", res.Reply)
	}
	lte, _ := strconv.Atoi(m[1])
	nbiot, _ := strconv.Atoi(m[2])
	gnss, _ := strconv.Atoi(m[3])
	pref, _ := strconv.Atoi(m[4])

	var modes []string
	for _, sys := range []struct {
		on   int
		name string
	}{{lte, "LTE-M"}, {nbiot, "NB-IoT"}, {gnss, "GNSS"}} {
		if sys.on == 1 {
			modes = append(modes, sys.name)
		}
	}
	desc := strings.Join(modes, ", ")
	if desc == "" {
		desc = "(none)"
	}

	return Parsed{
		Fields: map[string]any{
			"lte_m":      lte,
			"nb_iot":     nbiot,
			"gnss":       gnss,
			"preference": pref,
		},
		Description: desc,
	}, nil
}

const xmonitorPrefix = "%XMONITOR: "

// ParseXMonitor extracts the per-cell network parameters from %XMONITOR.
// The reply is a CSV row; short rows are padded since older firmware omits
// trailing columns. RSRP index converts to dBm (index - 140), SNR index to
// dB (index / 10). Unparseable columns are omitted from the fields.
func ParseXMonitor(res query.ATResult) (Parsed, error) {
	if !strings.HasPrefix(res.Reply, xmonitorPrefix) {
		return Parsed{}, fmt.Errorf("unparseable %%XMONITOR reply: %q", res.Reply)
	}
	row, err := csv.NewReader(strings.NewReader(res.Reply[len(xmonitorPrefix):])).Read()
	if err != nil {
		return Parsed{}, fmt.Errorf("malformed %%XMONITOR row: %w", err)
	}
	for len(row) < 16 {
		row = append(row, "")
	}

	fields := map[string]any{
		"plmn":    strings.Trim(row[3], `"`),
		"tac":     strings.Trim(row[4], `"`),
		"cell_id": strings.Trim(row[7], `"`),
	}

	reg := -1
	if v, ok := atoi(row[0]); ok {
		reg = v
	}
	fields["reg_status"] = reg

	if v, ok := atoi(row[5]); ok {
		fields["act"] = v
	}
	if v, ok := atoi(row[6]); ok {
		fields["band"] = v
	}
	if v, ok := atoi(row[8]); ok {
		fields["phys_cell_id"] = v
	}
	if v, ok := atoi(row[9]); ok {
		fields["earfcn"] = v
	}

	parts := []string{registrationStatus(reg)}
	if band, ok := fields["band"].(int); ok {
		parts = append(parts, fmt.Sprintf("LTE band %d", band))
	}
	if v, ok := atoi(row[10]); ok {
		rsrp := v - 140
		fields["rsrp_dbm"] = rsrp
		parts = append(parts, fmt.Sprintf("RSRP %d dBm", rsrp))
	}
	if v, ok := atoi(row[11]); ok {
		snr := float64(v) / 10
		fields["snr_db"] = snr
		parts = append(parts, fmt.Sprintf("SNR %.1f dB", snr))
	}

	return Parsed{Fields: fields, Description: strings.Join(parts, ", ")}, nil
}

func atoi(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// modemRegistration pairs a command key with its parser and human name.
type modemRegistration struct {
	key    string
	parser Parser
	name   string
}

func modemRegistrations() []modemRegistration {
	return []modemRegistration{
		{"AT+CFUN=1", Generic(), "Modem functional"},
		{"AT+CFUN=0", Generic(), "Modem functional"},
		{"AT+CEREG?", ParseCEREG, "Network registration"},
		{"AT+CGMI", Generic(), "Manufacturer"},
		{"AT+CGMR", Generic(), "Firmware version"},
		{"AT+CGMM", Generic(), "Model"},
		{"AT+CGSN", Generic(), "IMEI"},
		{"AT+CIMI", Generic(), "IMSI"},
		{"AT%XICCID", Generic(), "ICCID"},
		{"AT%XMONITOR", ParseXMonitor, "Network monitor"},
		{"AT%XVBAT", ParseXVBAT, "Battery voltage"},
		{"AT%XTEMP?", ParseXTEMP, "Modem temperature"},
		{"AT%XSYSTEMMODE?", ParseXSystemMode, "System mode"},
		{"AT%CMNG=1", Digest(), "Credential digest"},
	}
}

// RegisterModemParsers installs the built-in nRF91 modem parsers.
// Fails fast on a key conflict with whatever is already registered.
func RegisterModemParsers(r *Registry) error {
	for _, reg := range modemRegistrations() {
		if err := r.Register(reg.key, reg.parser, reg.name, false); err != nil {
			return err
		}
	}
	return nil
}
