package cratestore

import (
	"io"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v2"
)

type CrateSource struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

func (cs CrateSource) IsZip() bool {
	return strings.HasSuffix(strings.ToLower(cs.Path), ".zip")
}

type VocabularyConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Offline bool          `yaml:"offline"`
}

type Config struct {
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Crates     []CrateSource    `yaml:"crates"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)

	return cfg, err
}
