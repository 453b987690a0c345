package config

import "time"

// Profile holds a named set of run options from the config file.
// Zero values mean "not set" and leave the current value untouched.
type Profile struct {
	// Target is the URL under load.
	Target string `yaml:"target,omitempty"`

	// Pool overrides the worker pool size.
	Pool int `yaml:"pool,omitempty"`

	// Interval overrides the sleep between waves (e.g. "500ms").
	Interval time.Duration `yaml:"interval,omitempty"`

	// Timeout overrides the per-request timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxWaves stops the run after this many waves.
	MaxWaves int `yaml:"maxWaves,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Proxy is a SOCKS5 proxy address in "host:port" format.
	Proxy string `yaml:"proxy,omitempty"`

	// Headers are custom HTTP headers added to every request.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// DNSRecord holds defaults for the dns upsert command.
type DNSRecord struct {
	// Name is the record name (e.g. "app.example.com").
	Name string `yaml:"name,omitempty"`

	// Value is the CNAME target, typically a load balancer hostname.
	Value string `yaml:"value,omitempty"`

	// TTL is the record TTL in seconds.
	TTL int64 `yaml:"ttl,omitempty"`

	// HostedZoneID is the Route 53 hosted zone.
	HostedZoneID string `yaml:"zone,omitempty"`

	// Comment is attached to the change batch.
	Comment string `yaml:"comment,omitempty"`

	// AWSProfile is the shared-config profile used for the call.
	AWSProfile string `yaml:"awsProfile,omitempty"`

	// Region is the AWS region used to build the client.
	Region string `yaml:"region,omitempty"`
}

// File represents the structure of the .waveload configuration file.
type File struct {
	// Defaults apply to every run before the selected profile.
	Defaults Profile `yaml:"defaults,omitempty"`

	// Profiles maps a profile name to its options.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`

	// DNS holds defaults for "waveload dns upsert".
	DNS DNSRecord `yaml:"dns,omitempty"`
}

// GetProfile returns the named profile merged over the defaults.
// An empty name returns the defaults alone.
func (cf *File) GetProfile(name string) (Profile, error) {
	result := cf.Defaults
	if name == "" {
		return result, nil
	}

	p, ok := cf.Profiles[name]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}

	if p.Target != "" {
		result.Target = p.Target
	}
	if p.Pool > 0 {
		result.Pool = p.Pool
	}
	if p.Interval > 0 {
		result.Interval = p.Interval
	}
	if p.Timeout > 0 {
		result.Timeout = p.Timeout
	}
	if p.MaxWaves > 0 {
		result.MaxWaves = p.MaxWaves
	}
	if p.UserAgent != "" {
		result.UserAgent = p.UserAgent
	}
	if p.Proxy != "" {
		result.Proxy = p.Proxy
	}
	if len(p.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(p.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range p.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return result, nil
}
