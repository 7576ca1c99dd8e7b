package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Uncommented keys override the environment.
const defaultConfig = `# synthesis engine: elevenlabs or mock
# engine: "elevenlabs"

elevenlabs:
  # credentials, usually set with ELEVENLABS_API_KEY and ELEVENLABS_VOICE_ID
  # api_key: ""
  # voice_id: ""
  # base_url: "https://api.elevenlabs.io/v1"
  # model_id: "eleven_monolingual_v1"

  # voice settings (0.0 to 1.0)
  # stability: 0.75
  # similarity_boost: 0.8
  # style: 0.8
  # use_speaker_boost: true

  # timeout: "30s"
  # requests per minute, 0 disables the limit
  # requests_per_minute: 120
  # retries after the first attempt, with exponential backoff and jitter
  # max_retries: 3
  # base_delay: "1s"
  # max_jitter: "1s"

cache:
  # directory of compressed phrase files
  # dir: "./tts_cache"
  # phrases kept in memory
  # memory_items: 100
  # gzip level (1 to 9)
  # compression_level: 6
  # drop memory entries whose file is removed by another process
  # watch: false

voice:
  # pause between phrases while pre-warming
  # prewarm_delay: "200ms"
  # savings estimate
  # cost_per_char: 0.000015
  # avg_phrase_chars: 20
  # replace the built-in phrase catalog
  # catalog_path: "~/.config/toevoice/catalog.yaml"

log:
  # level: "info"
  # file: ""
`

var configCmd = &cobra.Command{
	Use:               "config",
	Hidden:            false,
	Short:             "Edit the toevoice config file",
	Long:              paragraph(fmt.Sprintf("\n%s the toevoice config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example:           paragraph("toevoice config\ntoevoice config --config path/to/config.yml"),
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("toevoice", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
