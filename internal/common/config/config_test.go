package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("CS_TEST_SECRET", "from-env")

	in := []byte("secret: ${CS_TEST_SECRET}\nport: ${CS_TEST_PORT:5000}\n")
	out := string(resolveEnv(in))

	assert.Contains(t, out, "secret: from-env")
	assert.Contains(t, out, "port: 5000")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apiserver.yaml")
	content := `
server:
  port: ${CS_PORT:5000}
database:
  type: sqlite
  dbname: ` + filepath.Join(dir, "data", "campusshield.db") + `
jwt:
  secret_key: ${CS_JWT_SECRET:test-secret-key-that-is-long-enough!!}
  duration: 24h
limiter:
  type: memory
  limit: 5
  window: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig[APIServerConfig](path)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Duration)
	assert.Equal(t, 5, cfg.Limiter.Limit)
}

func TestGetDSN(t *testing.T) {
	pg := DatabaseConfig{
		Type: "postgres", Host: "localhost", Port: 5432,
		User: "shield", Password: "pw", DBName: "campusshield", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://shield:pw@localhost:5432/campusshield?sslmode=disable", pg.GetDSN())

	my := DatabaseConfig{
		Type: "mysql", Host: "localhost", Port: 3306,
		User: "shield", Password: "pw", DBName: "campusshield",
	}
	assert.Equal(t, "shield:pw@tcp(localhost:3306)/campusshield?charset=utf8mb4&parseTime=True&loc=Local", my.GetDSN())

	unknown := DatabaseConfig{Type: "oracle"}
	assert.Equal(t, "", unknown.GetDSN())
}

func TestRouteAddress(t *testing.T) {
	n := NotifyConfig{
		RoutingAddresses: map[string]string{
			"police":             "police@campus.edu",
			"women_organization": "wo@campus.edu",
		},
		DefaultRoutingAddress: "safety@campus.edu",
	}

	assert.Equal(t, "police@campus.edu", n.RouteAddress("police"))
	assert.Equal(t, "wo@campus.edu", n.RouteAddress("women_organization"))
	assert.Equal(t, "safety@campus.edu", n.RouteAddress("Unknown"))
	assert.Equal(t, "safety@campus.edu", n.RouteAddress(""))
}
