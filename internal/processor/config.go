package processor

// Config toggles the enrichment steps
type Config struct {
	AddDesc         bool `yaml:"add_desc" env:"ADD_DESC"`
	AddImage        bool `yaml:"add_image" env:"ADD_IMAGE"`
	AddKeywords     bool `yaml:"add_keywords" env:"ADD_KEYWORDS"`
	AddShareButtons bool `yaml:"add_share_buttons" env:"ADD_SHARE_BUTTONS"`
	AddAuthors      bool `yaml:"add_authors" env:"ADD_AUTHORS"`
	AddJSONLD       bool `yaml:"add_json_ld" env:"ADD_JSON_LD"`
	AddCSS          bool `yaml:"add_css" env:"ADD_CSS"`
	AddCopyLLM      bool `yaml:"add_copy_llm" env:"ADD_COPY_LLM"`

	DefaultImage string `yaml:"default_image" env:"DEFAULT_IMAGE"`

	// Organization is named as the author in structured data
	OrganizationName string `yaml:"organization_name" env:"ORGANIZATION_NAME"`
	OrganizationURL  string `yaml:"organization_url" env:"ORGANIZATION_URL"`
}

// DefaultConfig enables everything except the git derived parts
func DefaultConfig() Config {
	return Config{
		AddDesc:         true,
		AddImage:        true,
		AddKeywords:     true,
		AddShareButtons: true,
		AddCSS:          true,
		AddCopyLLM:      true,
	}
}

// NeedsGit reports whether pages need git records
func (c Config) NeedsGit() bool {
	return c.AddAuthors || c.AddJSONLD
}
