package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/readaloud/tts"
)

func TestWriteConfig(t *testing.T) {
	v := viper.New()
	tts.SetDefaults(v)
	v.Set("tts.engine", "mock")

	var buf bytes.Buffer
	if err := writeConfig(&buf, v); err != nil {
		t.Fatal(err)
	}

	var got struct {
		TTS struct {
			Engine string  `yaml:"engine"`
			Rate   float64 `yaml:"rate"`
		} `yaml:"tts"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if got.TTS.Engine != "mock" {
		t.Errorf("engine = %q, want mock", got.TTS.Engine)
	}
	if got.TTS.Rate != tts.DefaultRate {
		t.Errorf("rate = %v, want %v", got.TTS.Rate, tts.DefaultRate)
	}
}

func TestDefaultConfigParses(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(defaultConfig)); err != nil {
		t.Fatal(err)
	}

	cfg, err := tts.LoadConfig(v)
	if err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
	if cfg.Engine != tts.EnginePiper {
		t.Errorf("engine = %q, want %q", cfg.Engine, tts.EnginePiper)
	}
}
