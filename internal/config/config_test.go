package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
log:
  level: warn
intake:
  max_photos: 12
  antiflood_window: 5s
  rate_limit_per_minute: 4
  districts:
    - Центральний
    - Південний
autopost:
  poll_interval: 1m
  default_interval: 45m
  target_chat_ids:
    - -100123
    - -100456
  backup_chat_ids:
    - -100789
bot:
  admin_group_id: -200111
  admins:
    - 11
    - 22
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
	if cfg.Intake.MaxPhotos != 12 {
		t.Fatalf("unexpected max photos: %d", cfg.Intake.MaxPhotos)
	}
	if cfg.Intake.AntifloodWindow != 5*time.Second {
		t.Fatalf("unexpected antiflood window: %s", cfg.Intake.AntifloodWindow)
	}
	if cfg.Intake.RateLimitPerMinute != 4 {
		t.Fatalf("unexpected per-minute limit: %d", cfg.Intake.RateLimitPerMinute)
	}
	if len(cfg.Intake.Districts) != 2 || cfg.Intake.Districts[0] != "Центральний" {
		t.Fatalf("unexpected districts: %v", cfg.Intake.Districts)
	}
	if cfg.Autopost.PollInterval != time.Minute {
		t.Fatalf("unexpected poll interval: %s", cfg.Autopost.PollInterval)
	}
	if cfg.Autopost.DefaultInterval != 45*time.Minute {
		t.Fatalf("unexpected default interval: %s", cfg.Autopost.DefaultInterval)
	}
	if len(cfg.Autopost.TargetChatIDs) != 2 || cfg.Autopost.TargetChatIDs[1] != -100456 {
		t.Fatalf("unexpected targets: %v", cfg.Autopost.TargetChatIDs)
	}
	if len(cfg.Autopost.BackupChatIDs) != 1 || cfg.Autopost.BackupChatIDs[0] != -100789 {
		t.Fatalf("unexpected backups: %v", cfg.Autopost.BackupChatIDs)
	}
	if cfg.Bot.AdminGroupID != -200111 {
		t.Fatalf("unexpected admin group id: %d", cfg.Bot.AdminGroupID)
	}
	if len(cfg.Bot.Admins) != 2 || cfg.Bot.Admins[1] != 22 {
		t.Fatalf("unexpected admins: %v", cfg.Bot.Admins)
	}

	// Untouched sections keep their defaults.
	if len(cfg.Intake.Categories) != 5 {
		t.Fatalf("categories default should stay, got %v", cfg.Intake.Categories)
	}
	if cfg.Intake.MaxPhotos == 0 || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis default should stay, got %s", cfg.Redis.Addr)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("POST_TARGET_IDS", "-1001, -1002")
	t.Setenv("BACKUP_CHANNEL_IDS", "-1003")
	t.Setenv("CITY_DISTRICTS", "Лівобережний,Правобережний")
	t.Setenv("BAD_WORDS", "казино, ставки")
	t.Setenv("DEFAULT_POST_INTERVAL", "1h")
	t.Setenv("ANTIFLOOD_WINDOW", "10s")
	t.Setenv("ADMIN_GROUP_ID", "-300222")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Bot.Token != "123:abc" {
		t.Fatalf("unexpected token: %s", cfg.Bot.Token)
	}
	if len(cfg.Autopost.TargetChatIDs) != 2 || cfg.Autopost.TargetChatIDs[0] != -1001 {
		t.Fatalf("unexpected targets from env: %v", cfg.Autopost.TargetChatIDs)
	}
	if len(cfg.Autopost.BackupChatIDs) != 1 {
		t.Fatalf("unexpected backups from env: %v", cfg.Autopost.BackupChatIDs)
	}
	if len(cfg.Intake.Districts) != 2 || cfg.Intake.Districts[1] != "Правобережний" {
		t.Fatalf("unexpected districts from env: %v", cfg.Intake.Districts)
	}
	if len(cfg.Intake.BadWords) != 2 || cfg.Intake.BadWords[1] != "ставки" {
		t.Fatalf("unexpected bad words from env: %v", cfg.Intake.BadWords)
	}
	if cfg.Autopost.DefaultInterval != time.Hour {
		t.Fatalf("unexpected default interval from env: %s", cfg.Autopost.DefaultInterval)
	}
	if cfg.Intake.AntifloodWindow != 10*time.Second {
		t.Fatalf("unexpected antiflood window from env: %s", cfg.Intake.AntifloodWindow)
	}
	if cfg.Bot.AdminGroupID != -300222 {
		t.Fatalf("unexpected admin group id from env: %d", cfg.Bot.AdminGroupID)
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("POST_TARGET_IDS", "-1001,oops")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for malformed POST_TARGET_IDS")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()

	keys := []string{
		"APP_ENV", "LOG_LEVEL", "POSTGRES_DSN",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_USE_SSL",
		"BOT_TOKEN", "ADMIN_GROUP_ID", "LOG_CHANNEL_ID", "ADMIN_IDS", "GUARDED_CHAT_IDS",
		"CATEGORIES", "CITY_DISTRICTS", "BAD_WORDS", "MAX_PHOTOS",
		"ANTIFLOOD_WINDOW", "RATE_LIMIT_PER_MINUTE", "HASH_HAMMING_LIMIT",
		"AUTOPOST_POLL_INTERVAL", "DEFAULT_POST_INTERVAL", "POST_TARGET_IDS", "BACKUP_CHANNEL_IDS",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
