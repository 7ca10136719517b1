package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (PODFORGE_ prefix), flags, or YAML config
// files.
type Config struct {
	PrintfulToken   string `usage:"Printful API token (PODFORGE_PRINTFUL_TOKEN or PRINTFUL_API_KEY)" flag:"printful-token"`
	PrintfulStoreID string `usage:"Printful store id sent with every request" flag:"printful-store-id"`

	Cloudinary CloudinaryConfig
	Paths      PathsConfig
	Batch      BatchConfig
	API        APIConfig
}

// CloudinaryConfig carries the image hosting credentials.
type CloudinaryConfig struct {
	CloudName string `usage:"Cloudinary cloud name (PODFORGE_CLOUDINARY_CLOUDNAME or CLOUDINARY_CLOUD_NAME)" flag:"cloudinary-cloud-name"`
	APIKey    string `usage:"Cloudinary API key" flag:"cloudinary-api-key"`
	APISecret string `usage:"Cloudinary API secret" flag:"cloudinary-api-secret"`
}

// PathsConfig points at the local asset directories.
type PathsConfig struct {
	DesignsDir    string `default:"designs" usage:"Directory of primary design files" flag:"designs-dir"`
	VariantsDir   string `default:"variants" usage:"Directory of per-product variant JSON files" flag:"variants-dir"`
	EmbroideryDir string `default:"embroidery" usage:"Directory of pre-processed embroidery artwork" flag:"embroidery-dir"`
	UpscaledDir   string `default:"upscaled" usage:"Directory of high-resolution artwork for back prints" flag:"upscaled-dir"`
	WorkDir       string `default:"" usage:"Scratch directory for derived images (system temp if empty)" flag:"work-dir"`
	ResultsDir    string `default:"results" usage:"Directory for build result JSON files" flag:"results-dir"`
	LogoPath      string `default:"generate/universal_logo.png" usage:"Universal logo for secondary embroidery slots" flag:"logo-path"`
	SideLogoPath  string `default:"generate/logo_black.png" usage:"Alternate logo for the cap side slot" flag:"side-logo-path"`
}

// BatchConfig sets variant batch sizes and pacing.
type BatchConfig struct {
	InitialSize int           `default:"8"  usage:"Variants sent with the create call"`
	AppendSize  int           `default:"10" usage:"Variants added per update call"`
	Pause       time.Duration `default:"2s" usage:"Wait between append batches"`
	FleetPause  time.Duration `default:"3s" usage:"Wait between fleet builds" flag:"fleet-pause"`
}

// APIConfig tunes the vendor API client.
type APIConfig struct {
	BaseURL     string        `default:"https://api.printful.com" usage:"Vendor API base URL" flag:"api-base-url"`
	Timeout     time.Duration `default:"30s" usage:"Per-request HTTP timeout" flag:"api-timeout"`
	MaxAttempts int           `default:"3" usage:"Attempts per API call" flag:"api-max-attempts"`
	MinInterval time.Duration `default:"1s" usage:"Minimum spacing between API requests" flag:"api-min-interval"`
}

// LoadConfig loads configuration from environment variables, YAML
// config files, and the unprefixed variable names the hosted services
// document.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "PODFORGE",
		Files:     []string{"config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyEnvFallbacks()

	if cfg.PrintfulToken == "" {
		return nil, errors.New("printful token is required: set PODFORGE_PRINTFUL_TOKEN or PRINTFUL_API_KEY")
	}
	if err := cfg.cloudinaryComplete(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvFallbacks maps the variable names the vendor dashboards
// document onto the PODFORGE_ configuration.
func (c *Config) applyEnvFallbacks() {
	if c.PrintfulToken == "" {
		c.PrintfulToken = os.Getenv("PRINTFUL_API_KEY")
	}
	if c.PrintfulStoreID == "" {
		c.PrintfulStoreID = os.Getenv("PRINTFUL_STORE_ID")
	}
	if c.Cloudinary.CloudName == "" {
		c.Cloudinary.CloudName = os.Getenv("CLOUDINARY_CLOUD_NAME")
	}
	if c.Cloudinary.APIKey == "" {
		c.Cloudinary.APIKey = os.Getenv("CLOUDINARY_API_KEY")
	}
	if c.Cloudinary.APISecret == "" {
		c.Cloudinary.APISecret = os.Getenv("CLOUDINARY_API_SECRET")
	}
}

func (c *Config) cloudinaryComplete() error {
	cl := c.Cloudinary
	if cl.CloudName == "" || cl.APIKey == "" || cl.APISecret == "" {
		return errors.New("cloudinary credentials are required: set CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET")
	}
	return nil
}
