package config

import "testing"

func TestRedisTLSConfig(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		t.Setenv("REDIS_TLS", "")
		t.Setenv("REDIS_TLS_INSECURE", "")
		if cfg := redisTLSConfig(); cfg != nil {
			t.Errorf("config = %+v, want nil without REDIS_TLS", cfg)
		}
	})

	t.Run("VerifiesByDefault", func(t *testing.T) {
		t.Setenv("REDIS_TLS", "true")
		t.Setenv("REDIS_TLS_INSECURE", "")
		cfg := redisTLSConfig()
		if cfg == nil {
			t.Fatal("config = nil with REDIS_TLS set")
		}
		if cfg.InsecureSkipVerify {
			t.Error("certificate verification disabled by default")
		}
	})

	t.Run("ExplicitInsecure", func(t *testing.T) {
		t.Setenv("REDIS_TLS", "1")
		t.Setenv("REDIS_TLS_INSECURE", "1")
		cfg := redisTLSConfig()
		if cfg == nil {
			t.Fatal("config = nil with REDIS_TLS set")
		}
		if !cfg.InsecureSkipVerify {
			t.Error("REDIS_TLS_INSECURE not honored")
		}
	})
}
