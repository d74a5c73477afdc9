package mssql

import (
	"fmt"
	"strings"
)

// Authentication methods.
const (
	AuthSQL              = "sql"
	AuthServicePrincipal = "service_principal"
)

// Config contains SQL Server-specific connection options.
type Config struct {
	Host     string
	Port     int
	Database string

	// AuthMethod determines which authentication to use: "sql" or "service_principal"
	AuthMethod string

	// SQL Authentication fields
	Username string
	Password string

	// Service Principal (Azure AD) fields
	TenantID     string
	ClientID     string
	ClientSecret string

	// Connection options
	Encrypt                bool
	TrustServerCertificate bool
	ConnectionTimeout      int
	MaxConnections         int
}

// DefaultPort returns the default SQL Server port.
func DefaultPort() int {
	return 1433
}

// DefaultConnectionTimeout returns the default connection timeout in seconds.
func DefaultConnectionTimeout() int {
	return 30
}

// FromMap creates a Config from a generic config map and auto-detects auth method.
func FromMap(config map[string]any) (*Config, error) {
	cfg := &Config{
		Port:              DefaultPort(),
		Encrypt:           true,
		ConnectionTimeout: DefaultConnectionTimeout(),
	}

	if host, ok := config["host"].(string); ok && host != "" {
		cfg.Host = host
	} else {
		return nil, fmt.Errorf("host is required")
	}

	if port, ok := intValue(config["port"]); ok && port > 0 {
		cfg.Port = port
	}

	if database, ok := config["database"].(string); ok && database != "" {
		cfg.Database = database
	} else if name, ok := config["name"].(string); ok && name != "" {
		// Support legacy "name" field
		cfg.Database = name
	} else {
		return nil, fmt.Errorf("database is required")
	}

	if encrypt, ok := config["encrypt"].(bool); ok {
		cfg.Encrypt = encrypt
	} else if encryptStr, ok := config["encrypt"].(string); ok {
		// Support string values: "true", "false", "strict"
		cfg.Encrypt = encryptStr == "true" || encryptStr == "strict"
	}

	if trust, ok := config["trust_server_certificate"].(bool); ok {
		cfg.TrustServerCertificate = trust
	}

	// The shared config layer sets ssl_mode; "disable" turns encryption off.
	if sslMode, ok := config["ssl_mode"].(string); ok && strings.EqualFold(sslMode, "disable") {
		if _, explicit := config["encrypt"]; !explicit {
			cfg.Encrypt = false
		}
	}

	if timeout, ok := intValue(config["connection_timeout"]); ok {
		cfg.ConnectionTimeout = timeout
	}

	if maxConns, ok := intValue(config["max_connections"]); ok && maxConns > 0 {
		cfg.MaxConnections = maxConns
	}

	// Auto-detect auth method or use explicitly provided
	if authMethod, ok := config["auth_method"].(string); ok && authMethod != "" {
		cfg.AuthMethod = authMethod
	} else {
		// Priority: client_id > username/user (non-empty)
		if clientID, ok := config["client_id"].(string); ok && clientID != "" {
			cfg.AuthMethod = AuthServicePrincipal
		} else if username, ok := config["username"].(string); ok && username != "" {
			cfg.AuthMethod = AuthSQL
		} else if user, ok := config["user"].(string); ok && user != "" {
			cfg.AuthMethod = AuthSQL
		} else {
			return nil, fmt.Errorf("could not auto-detect auth method; no credentials provided")
		}
	}

	switch cfg.AuthMethod {
	case AuthSQL:
		if username, ok := config["username"].(string); ok && username != "" {
			cfg.Username = username
		} else if user, ok := config["user"].(string); ok && user != "" {
			cfg.Username = user
		} else {
			return nil, fmt.Errorf("username is required for SQL authentication")
		}

		// Password can be empty for some scenarios
		if password, ok := config["password"].(string); ok {
			cfg.Password = password
		}

	case AuthServicePrincipal:
		for key, dst := range map[string]*string{
			"tenant_id":     &cfg.TenantID,
			"client_id":     &cfg.ClientID,
			"client_secret": &cfg.ClientSecret,
		} {
			if v, ok := config[key].(string); ok {
				*dst = v
			}
		}

	default:
		return nil, fmt.Errorf("invalid auth method: %s (must be %s or %s)", cfg.AuthMethod, AuthSQL, AuthServicePrincipal)
	}

	return cfg, cfg.Validate()
}

// Validate checks if the config has all required fields for the selected auth method.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	switch c.AuthMethod {
	case AuthSQL:
		if c.Username == "" {
			return fmt.Errorf("username is required for SQL authentication")
		}
	case AuthServicePrincipal:
		if c.TenantID == "" {
			return fmt.Errorf("tenant_id is required for service principal")
		}
		if c.ClientID == "" {
			return fmt.Errorf("client_id is required for service principal")
		}
		if c.ClientSecret == "" {
			return fmt.Errorf("client_secret is required for service principal")
		}
	default:
		return fmt.Errorf("invalid auth method: %s", c.AuthMethod)
	}

	return nil
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64: // JSON numbers are float64
		return int(n), true
	default:
		return 0, false
	}
}
