package config

import (
	"fmt"
	"strings"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/dedupe"
	"github.com/Veraticus/sift/internal/layout"
	"github.com/Veraticus/sift/internal/pattern"
	"github.com/spf13/viper"
)

// Settings is the typed snapshot of the configuration, built once at startup
// and passed to every pipeline.
type Settings struct {
	Logging      common.LogOptions
	Journal      JournalSettings
	Check        CheckSettings
	Partial      KeySettings
	Sheets       KeySettings
	Members      MembersSettings
	Totals       TotalsSettings
	Nomenclature NomenclatureSettings
	Statement    StatementSettings
}

// JournalSettings configures the optional run journal.
type JournalSettings struct {
	Path string
}

// CheckSettings configures the single-column duplicate check.
type CheckSettings struct {
	Column  string
	Policy  dedupe.MissingPolicy
	Display []string
}

// KeySettings configures a full/partial key duplicate analysis.
type KeySettings struct {
	Full    []string
	Partial []string
	Coerce  []string
	Policy  dedupe.MissingPolicy
}

// MembersSettings configures the members file cleanup.
type MembersSettings struct {
	Column      string
	IDColumn    string
	AuditColumn string
	Coerce      []string
}

// TotalsSettings configures the totals reconciliation.
type TotalsSettings struct {
	Columns []string
	// Sheet is read from the cleaned workbook when it exists there.
	Sheet   string
	Preview int
}

// NomenclatureSettings configures the PDF nomenclature extraction.
type NomenclatureSettings struct {
	Labels      []layout.Label
	Required    []string
	IndexColumn string
	Focus       []string
	Merge       []string
	Delimiter   string
	Rules       []pattern.Rule
	XTolerance  float64
	YTolerance  float64
	Margin      float64
}

// StatementSettings configures the payroll statement extraction.
type StatementSettings struct {
	Rules           []pattern.Rule
	Blocks          []pattern.BlockRule
	XTolerance      float64
	YTolerance      float64
	Gap             float64
	AnchorTolerance float64
}

// RegisterDefaults installs the default values on v.
func RegisterDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)

	v.SetDefault("dupes.check.column", "MATRICULE")
	v.SetDefault("dupes.check.policy", string(dedupe.ExcludeAny))
	v.SetDefault("dupes.check.display", []string{"NOM", "PRENOM", "DATE_NAISSANCE", "nom", "prenom"})

	full := []string{"NO_MATRICULE", "RECUP_NOM_AGENT(NO_MATRICULE)", "MT_MENSUALITE", "NOMBRE_AYANTS_DROIT"}
	v.SetDefault("dupes.partial.full", full)
	v.SetDefault("dupes.partial.partial", []string{"NO_MATRICULE", "MT_MENSUALITE", "NOMBRE_AYANTS_DROIT"})
	v.SetDefault("dupes.partial.policy", string(dedupe.AsEmpty))
	v.SetDefault("dupes.sheets.full", full)
	v.SetDefault("dupes.sheets.coerce", []string{"NO_MATRICULE", "MT_MENSUALITE"})
	v.SetDefault("dupes.sheets.policy", string(dedupe.AsEmpty))

	v.SetDefault("dupes.members.column", "MATRICULE")
	v.SetDefault("dupes.members.id_column", "ORDRE")
	v.SetDefault("dupes.members.audit_column", "DOUBLONS_SUPPRIMES")
	v.SetDefault("dupes.members.coerce", []string{"AYANTS_DROIT", "MENSUALITE", "MENSUALITEE", "AYANT_DROIT"})

	v.SetDefault("totals.columns", []string{"MT_MENSUALITE", "NOMBRE_AYANTS_DROIT"})
	v.SetDefault("totals.sheet", "SANS_DOUBLONS")
	v.SetDefault("totals.preview", 5)

	v.SetDefault("nomenclature.required", []string{"designation", "dci"})
	v.SetDefault("nomenclature.index_column", "N°")
	v.SetDefault("nomenclature.focus", []string{"N°", "Designation", "DCI"})
	v.SetDefault("nomenclature.merge", []string{"Designation", "DCI"})
	v.SetDefault("nomenclature.delimiter", " | ")
	v.SetDefault("nomenclature.x_tolerance", 2.0)
	v.SetDefault("nomenclature.y_tolerance", 2.0)
	v.SetDefault("nomenclature.margin", 5.0)

	v.SetDefault("statement.x_tolerance", 2.0)
	v.SetDefault("statement.y_tolerance", 2.0)
	v.SetDefault("statement.gap", 8.0)
	v.SetDefault("statement.anchor_tolerance", 12.0)
}

// Load reads the settings from v. Defaults must already be registered.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Logging: common.LogOptions{
			Level:      v.GetString("logging.level"),
			Format:     v.GetString("logging.format"),
			File:       ExpandPath(v.GetString("logging.file")),
			MaxSizeMB:  v.GetInt("logging.max_size_mb"),
			MaxBackups: v.GetInt("logging.max_backups"),
		},
		Journal: JournalSettings{Path: ExpandPath(v.GetString("journal.path"))},
		Check: CheckSettings{
			Column:  v.GetString("dupes.check.column"),
			Display: v.GetStringSlice("dupes.check.display"),
		},
		Partial: KeySettings{
			Full:    v.GetStringSlice("dupes.partial.full"),
			Partial: v.GetStringSlice("dupes.partial.partial"),
			Coerce:  v.GetStringSlice("dupes.partial.coerce"),
		},
		Sheets: KeySettings{
			Full:   v.GetStringSlice("dupes.sheets.full"),
			Coerce: v.GetStringSlice("dupes.sheets.coerce"),
		},
		Members: MembersSettings{
			Column:      v.GetString("dupes.members.column"),
			IDColumn:    v.GetString("dupes.members.id_column"),
			AuditColumn: v.GetString("dupes.members.audit_column"),
			Coerce:      v.GetStringSlice("dupes.members.coerce"),
		},
		Totals: TotalsSettings{
			Columns: v.GetStringSlice("totals.columns"),
			Sheet:   v.GetString("totals.sheet"),
			Preview: v.GetInt("totals.preview"),
		},
		Nomenclature: NomenclatureSettings{
			Required:    v.GetStringSlice("nomenclature.required"),
			IndexColumn: v.GetString("nomenclature.index_column"),
			Focus:       v.GetStringSlice("nomenclature.focus"),
			Merge:       v.GetStringSlice("nomenclature.merge"),
			Delimiter:   v.GetString("nomenclature.delimiter"),
			XTolerance:  v.GetFloat64("nomenclature.x_tolerance"),
			YTolerance:  v.GetFloat64("nomenclature.y_tolerance"),
			Margin:      v.GetFloat64("nomenclature.margin"),
		},
		Statement: StatementSettings{
			XTolerance:      v.GetFloat64("statement.x_tolerance"),
			YTolerance:      v.GetFloat64("statement.y_tolerance"),
			Gap:             v.GetFloat64("statement.gap"),
			AnchorTolerance: v.GetFloat64("statement.anchor_tolerance"),
		},
	}

	var err error
	if s.Check.Policy, err = dedupe.ParsePolicy(v.GetString("dupes.check.policy")); err != nil {
		return nil, err
	}
	if s.Partial.Policy, err = dedupe.ParsePolicy(v.GetString("dupes.partial.policy")); err != nil {
		return nil, err
	}
	if s.Sheets.Policy, err = dedupe.ParsePolicy(v.GetString("dupes.sheets.policy")); err != nil {
		return nil, err
	}

	if s.Nomenclature.Labels, err = loadLabels(v); err != nil {
		return nil, err
	}
	if s.Nomenclature.Rules, err = loadRules(v, "patterns.nomenclature", pattern.NomenclatureRules()); err != nil {
		return nil, err
	}
	if s.Statement.Rules, err = loadRules(v, "patterns.statement", pattern.StatementRules()); err != nil {
		return nil, err
	}
	s.Statement.Blocks = pattern.StatementBlocks()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings for values no pipeline can run with.
func (s *Settings) Validate() error {
	if len(s.Partial.Full) == 0 || len(s.Partial.Partial) == 0 {
		return fmt.Errorf("%w: dupes.partial keys cannot be empty", common.ErrInvalidConfig)
	}
	if s.Nomenclature.IndexColumn == "" {
		return fmt.Errorf("%w: nomenclature.index_column cannot be empty", common.ErrInvalidConfig)
	}
	if s.Nomenclature.XTolerance < 0 || s.Statement.XTolerance < 0 {
		return fmt.Errorf("%w: x tolerance must be positive", common.ErrInvalidConfig)
	}
	if s.Totals.Preview < 0 {
		return fmt.Errorf("%w: totals.preview cannot be negative", common.ErrInvalidConfig)
	}
	if s.Statement.Gap <= 0 {
		return fmt.Errorf("%w: statement.gap must be positive", common.ErrInvalidConfig)
	}
	return nil
}

type labelConfig struct {
	Column   string   `mapstructure:"column"`
	Keywords []string `mapstructure:"keywords"`
	Exact    []string `mapstructure:"exact"`
}

func loadLabels(v *viper.Viper) ([]layout.Label, error) {
	if !v.IsSet("nomenclature.labels") {
		return layout.DefaultLabels(), nil
	}

	var raw []labelConfig
	if err := v.UnmarshalKey("nomenclature.labels", &raw); err != nil {
		return nil, fmt.Errorf("%w: nomenclature.labels: %v", common.ErrInvalidConfig, err)
	}

	labels := make([]layout.Label, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l.Column) == "" {
			return nil, fmt.Errorf("%w: label without column", common.ErrInvalidConfig)
		}
		labels = append(labels, layout.Label{Column: l.Column, Keywords: l.Keywords, Exact: l.Exact})
	}
	return labels, nil
}

func loadRules(v *viper.Viper, key string, defaults []pattern.Rule) ([]pattern.Rule, error) {
	if !v.IsSet(key) {
		return defaults, nil
	}

	var raw []pattern.RuleConfig
	if err := v.UnmarshalKey(key, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrInvalidConfig, key, err)
	}

	extra, err := pattern.CompileRules(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrInvalidConfig, key, err)
	}
	return pattern.Merge(defaults, extra), nil
}
