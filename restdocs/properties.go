package restdocs

import "fmt"

// URIProperties are the externally configured URI settings every driver's
// builder customizer accepts. Empty strings and a nil port mean "leave the
// driver's default alone".
type URIProperties struct {
	Scheme string `mapstructure:"uri-scheme"`
	Host   string `mapstructure:"uri-host"`
	Port   *int   `mapstructure:"uri-port"`
}

// Validate rejects a port outside 1-65535.
func (p URIProperties) Validate() error {
	if p.Port != nil && (*p.Port < 1 || *p.Port > 65535) {
		return fmt.Errorf("restdocs: uri-port %d out of range", *p.Port)
	}
	return nil
}
