package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg, err := FromYAML([]byte(GenerateDefault()))
	require.NoError(t, err)
	require.Equal(t, ":5000", cfg.Server.Addr)
	require.Len(t, cfg.Seed.Roles, 3)
	require.Equal(t, "Administrator", cfg.Seed.Roles[0].Name)
	require.Equal(t, []string{"dashboard", "tasks"}, cfg.Seed.Roles[2].Permissions)
	require.NotNil(t, cfg.Seed.Admin)
	require.Equal(t, "admin@example.com", cfg.Seed.Admin.Email)
	require.Len(t, cfg.Seed.Campaigns, 4)
	require.Equal(t, Default(), cfg)
}

func TestSeedCampaignDates(t *testing.T) {
	start, end, err := SeedCampaign{Name: "x", StartDate: "2023-06-01", EndDate: "2023-09-30"}.Dates()
	require.NoError(t, err)
	require.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC), *end)

	_, end, err = SeedCampaign{Name: "x", StartDate: "2023-06-01"}.Dates()
	require.NoError(t, err)
	require.Nil(t, end)

	_, _, err = SeedCampaign{Name: "x", StartDate: "June"}.Dates()
	require.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"duplicate role": `
seed:
  roles:
    - name: A
    - name: A
`,
		"admin without password": `
seed:
  admin:
    name: X
    email: x@example.com
`,
		"bad campaign date": `
seed:
  campaigns:
    - name: C
      start_date: "01/02/2023"
`,
		"webhook without url": `
webhooks:
  - secret: s
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromYAML([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teamboard.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":8080"
auth:
  jwt_secret: abc
webhooks:
  - url: http://example.invalid/hook
    events: [task]
`), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "abc", cfg.Auth.JWTSecret)
	require.True(t, cfg.Webhooks[0].Active())
	require.Nil(t, cfg.Seed.Admin)
}

func TestWebhookActive(t *testing.T) {
	off := false
	require.False(t, WebhookConfig{URL: "http://x", Enabled: &off}.Active())
	require.False(t, WebhookConfig{URL: " "}.Active())
	require.True(t, WebhookConfig{URL: "http://x"}.Active())
}

func TestYAMLMasksSecret(t *testing.T) {
	cfg := Default()
	cfg.Auth.JWTSecret = "top-secret"
	out, err := cfg.YAML()
	require.NoError(t, err)
	require.NotContains(t, out, "top-secret")
	require.Contains(t, out, "********")
	require.Equal(t, "top-secret", cfg.Auth.JWTSecret)
}
