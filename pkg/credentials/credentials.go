// Package credentials turns the connection settings supplied by the workflow host
// into the canonical credentials every operation consumes.
package credentials

import (
	"fmt"
	"strings"

	"github.com/surrealdb/surrealflow/pkg/constants"
)

// Mode selects how the connection endpoint is described.
type Mode string

const (
	ModeValues           Mode = "values"
	ModeConnectionString Mode = "connectionString"
)

// Authentication selects the scope the user signs in at.
type Authentication string

const (
	AuthRoot      Authentication = "Root"
	AuthNamespace Authentication = "Namespace"
	AuthDatabase  Authentication = "Database"
)

// Settings are the raw connection settings as configured on the host.
type Settings struct {
	Mode Mode `json:"mode" yaml:"mode"`

	// values mode
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`

	// connectionString mode
	ConnectionString string `json:"connectionString,omitempty" yaml:"connectionString,omitempty"`

	Authentication Authentication `json:"authentication,omitempty" yaml:"authentication,omitempty"`
	Namespace      string         `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Database       string         `json:"database,omitempty" yaml:"database,omitempty"`
	Username       string         `json:"username,omitempty" yaml:"username,omitempty"`
	Password       string         `json:"password,omitempty" yaml:"password,omitempty"`
}

// Credentials are the resolved connection parameters.
type Credentials struct {
	ConnectionString string
	Authentication   Authentication
	Username         string
	Password         string
	Namespace        string
	Database         string
}

// ValidationError reports invalid settings for one input item.
type ValidationError struct {
	ItemIndex int
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("item %d: %v", e.ItemIndex, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Resolve validates settings and produces credentials.
// itemIndex is only used to attribute a failure to the item that triggered resolution.
func Resolve(s Settings, itemIndex int) (Credentials, error) {
	c := Credentials{
		Authentication: s.Authentication,
		Username:       s.Username,
		Password:       s.Password,
		Namespace:      strings.TrimSpace(s.Namespace),
		Database:       strings.TrimSpace(s.Database),
	}
	if c.Authentication == "" {
		c.Authentication = AuthRoot
	}

	switch s.Mode {
	case ModeConnectionString:
		cs := strings.TrimSpace(s.ConnectionString)
		if cs == "" {
			return Credentials{}, &ValidationError{ItemIndex: itemIndex, Err: constants.ErrMissingConnectionString}
		}
		c.ConnectionString = cs
	case ModeValues, "":
		protocol := strings.TrimSpace(s.Protocol)
		if protocol == "" {
			protocol = constants.WebsocketScheme
		}
		c.ConnectionString = fmt.Sprintf("%s://%s:%d", protocol, strings.TrimSpace(s.Host), s.Port)
	default:
		return Credentials{}, &ValidationError{
			ItemIndex: itemIndex,
			Err:       fmt.Errorf("%w: %q", constants.ErrUnknownConnectionMode, s.Mode),
		}
	}

	switch c.Authentication {
	case AuthRoot, AuthNamespace, AuthDatabase:
	default:
		return Credentials{}, &ValidationError{
			ItemIndex: itemIndex,
			Err:       fmt.Errorf("unknown authentication %q", c.Authentication),
		}
	}

	return c, nil
}

// WithOverrides returns a copy of c where non-blank namespace and database overrides win.
func (c Credentials) WithOverrides(namespace, database string) Credentials {
	if ns := strings.TrimSpace(namespace); ns != "" {
		c.Namespace = ns
	}
	if db := strings.TrimSpace(database); db != "" {
		c.Database = db
	}
	return c
}

// HasContext reports whether both namespace and database are set.
func (c Credentials) HasContext() bool {
	return c.Namespace != "" && c.Database != ""
}
