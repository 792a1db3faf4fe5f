// Package config loads and validates the YAML bus-description file (spec
// §6.1), grounded on doismellburning-samoyed's own YAML loading
// (src/deviceid.go uses gopkg.in/yaml.v3 to load tocalls.yaml) and
// generalized with go-playground/validator/v10 for struct-level
// validation.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SignalPath is the YAML representation of a signal path: a dotted or
// slash-free string resolved against a descriptor's scope.
type SignalPath = string

// ClkRstIf names a clock/reset pair a bus descriptor can reference instead
// of repeating the paths (spec §9's common_clk_rst_ifs supplement).
type ClkRstIf struct {
	Clock     SignalPath `yaml:"clock"`
	Reset     SignalPath `yaml:"reset"`
	ResetType string     `yaml:"reset_type"`
}

// AXIChannelDescriptor describes one AXI channel's handshake plus its
// optional full-mode fields.
type AXIChannelDescriptor struct {
	Ready SignalPath `yaml:"ready" validate:"required"`
	Valid SignalPath `yaml:"valid" validate:"required"`
	ID    SignalPath `yaml:"id"`
	Last  SignalPath `yaml:"last"`
	Resp  SignalPath `yaml:"resp"`
}

// BusDescriptor is one entry of the `interfaces` map (spec §6.1).
type BusDescriptor struct {
	Scope          []string              `yaml:"scope"`
	Clock          SignalPath            `yaml:"clock"`
	Reset          SignalPath            `yaml:"reset"`
	ResetType      string                `yaml:"reset_type"`
	ClkRstIf       string                `yaml:"clk_rst_if"`
	CustomAnalyzer string                `yaml:"custom_analyzer"`
	Intervals      [][2]uint64           `yaml:"intervals"`
	MaxBurstDelay  *int32                `yaml:"max_burst_delay"`
	Ready          SignalPath            `yaml:"ready"`
	Valid          SignalPath            `yaml:"valid"`
	Credit         SignalPath            `yaml:"credit"`
	HTrans         SignalPath            `yaml:"htrans"`
	HReady         SignalPath            `yaml:"hready"`
	PSel           SignalPath            `yaml:"psel"`
	PEnable        SignalPath            `yaml:"penable"`
	PReady         SignalPath            `yaml:"pready"`
	AR             *AXIChannelDescriptor `yaml:"ar"`
	R              *AXIChannelDescriptor `yaml:"r"`
	AW             *AXIChannelDescriptor `yaml:"aw"`
	W              *AXIChannelDescriptor `yaml:"w"`
	B              *AXIChannelDescriptor `yaml:"b"`

	// consumed tracks which of this descriptor's YAML keys a Kind
	// inference step actually used, so unused keys can be warned about
	// (spec §6.1: "any declared YAML value that no selected analyzer
	// consumes emits a warning").
	consumed map[string]bool `yaml:"-"`
}

// Config is the top level of the YAML bus-description file.
type Config struct {
	Interfaces      map[string]*BusDescriptor `yaml:"interfaces" validate:"required"`
	Scopes          map[string][]string       `yaml:"scopes"`
	CommonClkRstIfs map[string]ClkRstIf       `yaml:"common_clk_rst_ifs"`
}

// rawConfig is decoded first, as a generic map, purely to find unknown
// top-level keys before re-decoding into the typed Config.
type rawConfig map[string]yaml.Node

var knownTopLevelKeys = map[string]bool{
	"interfaces":         true,
	"scopes":             true,
	"common_clk_rst_ifs": true,
}

// Load reads, parses and validates a bus-description YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}
	return Parse(data)
}

// Parse parses and validates a bus-description YAML document.
func Parse(data []byte) (*Config, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	var unknown []string
	for k := range raw {
		if !knownTopLevelKeys[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown top-level config key(s): %s", strings.Join(unknown, ", "))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	for name, bd := range cfg.Interfaces {
		if err := bd.resolveClkRst(cfg.CommonClkRstIfs); err != nil {
			return nil, fmt.Errorf("bus %q: %w", name, err)
		}
		if bd.Clock == "" || bd.Reset == "" {
			return nil, fmt.Errorf("bus %q: clock and reset are required", name)
		}
		if err := bd.validateAXIFullTriples(); err != nil {
			return nil, fmt.Errorf("bus %q: %w", name, err)
		}
	}

	return &cfg, nil
}

// resolveClkRst fills Clock/Reset/ResetType from the named common_clk_rst_ifs
// entry when ClkRstIf is set and Clock/Reset were not given directly.
func (bd *BusDescriptor) resolveClkRst(common map[string]ClkRstIf) error {
	if bd.ClkRstIf == "" {
		return nil
	}
	ifc, ok := common[bd.ClkRstIf]
	if !ok {
		return fmt.Errorf("clk_rst_if %q not present in common_clk_rst_ifs", bd.ClkRstIf)
	}
	if bd.Clock == "" {
		bd.Clock = ifc.Clock
	}
	if bd.Reset == "" {
		bd.Reset = ifc.Reset
	}
	if bd.ResetType == "" {
		bd.ResetType = ifc.ResetType
	}
	return nil
}

// validateAXIFullTriples enforces the "all-or-none" rule for AXI full mode:
// ar.id, r.id and r.last (read) and aw.id, w.last and b.id (write) must
// either all be absent (lite mode) or all be present (spec §6.1). The resp
// fields are optional in both modes and are not part of either triple.
func (bd *BusDescriptor) validateAXIFullTriples() error {
	if bd.AR != nil && bd.R != nil {
		arFull := bd.AR.ID != ""
		rIDSet := bd.R.ID != ""
		rLastSet := bd.R.Last != ""
		if arFull != rIDSet || arFull != rLastSet {
			return fmt.Errorf("AXI read: ar.id, r.id and r.last must all be set together, or none of them")
		}
	}
	if bd.AW != nil && bd.B != nil {
		awFull := bd.AW.ID != ""
		wFull := bd.W != nil && bd.W.Last != ""
		bFull := bd.B.ID != ""
		if awFull != wFull || awFull != bFull {
			return fmt.Errorf("AXI write: aw.id, w.last and b.id must all be set together, or none of them")
		}
	}
	return nil
}

// ResetActiveHigh reports the descriptor's reset polarity ("low" is the
// only other recognized value; anything else including the empty string
// defaults to active-high, matching the original's default).
func (bd *BusDescriptor) ResetActiveHigh() bool {
	return !strings.EqualFold(bd.ResetType, "low")
}

// Kind classifies which protocol this descriptor selects, in the priority
// order spec §6.1 lists (explicit custom_analyzer first, then the
// protocol-specific key combinations).
type Kind int

const (
	KindUnknown Kind = iota
	KindReadyValid
	KindCreditValid
	KindAHB
	KindAPB
	KindAXIRead
	KindAXIWrite
	KindCustom
)

// Classify infers the descriptor's Kind and records which keys it
// consumed, for the unused-key warning pass (spec §6.1).
func (bd *BusDescriptor) Classify() Kind {
	bd.consumed = map[string]bool{"clock": true, "reset": true, "reset_type": true, "clk_rst_if": true, "scope": true, "intervals": true, "max_burst_delay": true}

	if bd.CustomAnalyzer == "AXIRdAnalyzer" {
		bd.consumed["custom_analyzer"] = true
		bd.markAXIRead()
		return KindAXIRead
	}
	if bd.CustomAnalyzer == "AXIWrAnalyzer" {
		bd.consumed["custom_analyzer"] = true
		bd.markAXIWrite()
		return KindAXIWrite
	}
	if bd.CustomAnalyzer != "" {
		bd.consumed["custom_analyzer"] = true
		return KindCustom
	}

	switch {
	case bd.Ready != "" && bd.Valid != "":
		bd.consumed["ready"] = true
		bd.consumed["valid"] = true
		return KindReadyValid
	case bd.Credit != "" && bd.Valid != "":
		bd.consumed["credit"] = true
		bd.consumed["valid"] = true
		return KindCreditValid
	case bd.HTrans != "" && bd.HReady != "":
		bd.consumed["htrans"] = true
		bd.consumed["hready"] = true
		return KindAHB
	case bd.PSel != "" && bd.PEnable != "" && bd.PReady != "":
		bd.consumed["psel"] = true
		bd.consumed["penable"] = true
		bd.consumed["pready"] = true
		return KindAPB
	case bd.AR != nil && bd.R != nil:
		bd.markAXIRead()
		return KindAXIRead
	case bd.AW != nil && bd.W != nil && bd.B != nil:
		bd.markAXIWrite()
		return KindAXIWrite
	default:
		return KindUnknown
	}
}

func (bd *BusDescriptor) markAXIRead() {
	bd.consumed["ar"] = true
	bd.consumed["r"] = true
}

func (bd *BusDescriptor) markAXIWrite() {
	bd.consumed["aw"] = true
	bd.consumed["w"] = true
	bd.consumed["b"] = true
}

// UnusedKeys reports which of the protocol-specific top-level keys this
// descriptor declared but Classify did not consume (spec §6.1's "emits a
// warning listing the dotted path").
func (bd *BusDescriptor) UnusedKeys() []string {
	all := map[string]bool{
		"ready": bd.Ready != "", "valid": bd.Valid != "",
		"credit": bd.Credit != "",
		"htrans": bd.HTrans != "", "hready": bd.HReady != "",
		"psel": bd.PSel != "", "penable": bd.PEnable != "", "pready": bd.PReady != "",
		"ar": bd.AR != nil, "r": bd.R != nil,
		"aw": bd.AW != nil, "w": bd.W != nil, "b": bd.B != nil,
	}
	var unused []string
	for k, present := range all {
		if present && !bd.consumed[k] {
			unused = append(unused, k)
		}
	}
	sort.Strings(unused)
	return unused
}
