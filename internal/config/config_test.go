package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/dedupe"
	"github.com/Veraticus/sift/internal/pattern"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	RegisterDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "MATRICULE", s.Check.Column)
	assert.Equal(t, dedupe.ExcludeAny, s.Check.Policy)
	assert.Equal(t, dedupe.AsEmpty, s.Partial.Policy)
	assert.Equal(t, dedupe.AsEmpty, s.Sheets.Policy)
	assert.Equal(t, []string{"NO_MATRICULE", "MT_MENSUALITE", "NOMBRE_AYANTS_DROIT"}, s.Partial.Partial)
	assert.Len(t, s.Partial.Full, 4)
	assert.Equal(t, "DOUBLONS_SUPPRIMES", s.Members.AuditColumn)
	assert.Equal(t, []string{"MT_MENSUALITE", "NOMBRE_AYANTS_DROIT"}, s.Totals.Columns)
	assert.Equal(t, "SANS_DOUBLONS", s.Totals.Sheet)
	assert.Equal(t, 5, s.Totals.Preview)

	assert.Equal(t, "N°", s.Nomenclature.IndexColumn)
	assert.Equal(t, " | ", s.Nomenclature.Delimiter)
	assert.Len(t, s.Nomenclature.Labels, 11)
	assert.Len(t, s.Nomenclature.Rules, len(pattern.NomenclatureRules()))
	assert.Len(t, s.Statement.Blocks, 1)
	assert.InDelta(t, 8.0, s.Statement.Gap, 0.001)
	assert.Empty(t, s.Journal.Path)
}

func TestLoad_InvalidPolicy(t *testing.T) {
	v := newViper()
	v.Set("dupes.check.policy", "sometimes")

	_, err := Load(v)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"empty partial key", "dupes.partial.partial", []string{}},
		{"empty index column", "nomenclature.index_column", ""},
		{"zero gap", "statement.gap", 0.0},
		{"negative preview", "totals.preview", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestLoad_LoggingFile(t *testing.T) {
	dir := t.TempDir()
	v := newViper()
	v.Set("logging.level", "debug")
	v.Set("logging.file", filepath.Join(dir, "sift.log"))

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Logging.Level)
	assert.Equal(t, 10, s.Logging.MaxSizeMB)

	logger, err := common.NewLogger(os.Stderr, s.Logging)
	require.NoError(t, err)
	logger.Info("Loaded")
	assert.FileExists(t, filepath.Join(dir, "sift.log"))
}

func TestLoad_RuleOverrides(t *testing.T) {
	v := newViper()
	v.Set("patterns.nomenclature", []map[string]any{
		{"label": "page-number", "pattern": `^\d+$`, "priority": 5},
		{"label": "annex", "pattern": "annexe", "ignore_case": true, "priority": 60},
	})

	s, err := Load(v)
	require.NoError(t, err)

	rules := s.Nomenclature.Rules
	require.Len(t, rules, len(pattern.NomenclatureRules())+1)
	assert.Equal(t, "page-number", rules[0].Label)
	assert.Equal(t, 5, rules[0].Priority)
	assert.Equal(t, "annex", rules[len(rules)-1].Label)
	assert.True(t, rules[len(rules)-1].Pattern.MatchString("ANNEXE 2"))
}

func TestLoad_InvalidRule(t *testing.T) {
	v := newViper()
	v.Set("patterns.statement", []map[string]any{{"label": "broken", "pattern": "("}})

	_, err := Load(v)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoad_Labels(t *testing.T) {
	v := newViper()
	v.Set("nomenclature.labels", []map[string]any{
		{"column": "N°", "exact": []string{"n°"}},
		{"column": "Libelle", "keywords": []string{"libelle"}},
	})

	s, err := Load(v)
	require.NoError(t, err)
	require.Len(t, s.Nomenclature.Labels, 2)
	assert.Equal(t, "Libelle", s.Nomenclature.Labels[1].Column)
	assert.True(t, s.Nomenclature.Labels[1].Matches("libelle"))

	v.Set("nomenclature.labels", []map[string]any{{"keywords": []string{"x"}}})
	_, err = Load(v)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
dupes:
  check:
    column: NO_MATRICULE
    policy: as-empty
journal:
  path: $SIFT_TEST_DIR/journal.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("SIFT_TEST_DIR", dir)

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "NO_MATRICULE", s.Check.Column)
	assert.Equal(t, dedupe.AsEmpty, s.Check.Policy)
	assert.Equal(t, filepath.Join(dir, "journal.db"), s.Journal.Path)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SIFT_DATA", "/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "sift", "journal.db"), ExpandPath("~/sift/journal.db"))
	assert.Equal(t, "/data/out.xlsx", ExpandPath("$SIFT_DATA/out.xlsx"))
	assert.Equal(t, "relative/file", ExpandPath("relative/file"))
}
