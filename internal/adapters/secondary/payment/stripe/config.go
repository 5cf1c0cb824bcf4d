package stripe

import (
	"fmt"
	"time"
)

type Config struct {
	Secret           string        `envconfig:"SECRET" required:"true"`
	SuccessURL       string        `envconfig:"SUCCESS_URL" required:"true"`
	CancelURL        string        `envconfig:"CANCEL_URL" required:"true"`
	EndpointSecret   string        `envconfig:"ENDPOINT_SECRET" required:"true"`
	APIURL           string        `envconfig:"API_URL"` // override for stripe-mock / tests
	MaxRetries       int64         `envconfig:"MAX_RETRIES" default:"2"`
	IgnoreAPIVersion bool          `envconfig:"IGNORE_API_VERSION" default:"true"`
	Tolerance        time.Duration `envconfig:"WEBHOOK_TOLERANCE" default:"5m"`
}

func (c *Config) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("stripe secret is required")
	}
	if c.SuccessURL == "" || c.CancelURL == "" {
		return fmt.Errorf("stripe success and cancel urls are required")
	}
	if c.EndpointSecret == "" {
		return fmt.Errorf("stripe endpoint secret is required")
	}
	return nil
}
