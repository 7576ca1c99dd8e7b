package ui

// Config contains report rendering options.
type Config struct {
	// Plain disables styling, set when stdout is not a terminal
	Plain bool

	// Width of the label column
	LabelWidth int `env:"TOEVOICE_LABEL_WIDTH" envDefault:"22"`

	// NoColor disables styling when set to any non-empty value
	NoColor string `env:"NO_COLOR"`
}

func (c Config) plain() bool {
	return c.Plain || c.NoColor != ""
}
