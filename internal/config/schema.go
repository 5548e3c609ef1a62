package config

// Config holds tts-app configuration.
// Stored at: {home}/config.yaml
type Config struct {
	DBPath     string        `mapstructure:"db_path" yaml:"db_path"`       // Override for the job database path
	OutputDir  string        `mapstructure:"output_dir" yaml:"output_dir"` // Default output directory for audio
	Defaults   DefaultsCfg   `mapstructure:"defaults" yaml:"defaults"`
	Kokoro     KokoroCfg     `mapstructure:"kokoro" yaml:"kokoro"`
	Chatterbox ChatterboxCfg `mapstructure:"chatterbox" yaml:"chatterbox"`
}

// DefaultsCfg specifies job-level defaults applied when flags are omitted.
type DefaultsCfg struct {
	Engine             string `mapstructure:"engine" yaml:"engine"`                             // "kokoro" or "chatterbox"
	Device             string `mapstructure:"device" yaml:"device"`                             // "cpu", "cuda", "mps"
	Workers            int    `mapstructure:"workers" yaml:"workers"`                           // Worker pool size
	ParagraphsPerChunk int    `mapstructure:"paragraphs_per_chunk" yaml:"paragraphs_per_chunk"` // Chunk grouping size
	MergeOutput        bool   `mapstructure:"merge_output" yaml:"merge_output"`                 // Merge on completion
}

// KokoroCfg holds kokoro engine defaults.
type KokoroCfg struct {
	Lang  string  `mapstructure:"lang" yaml:"lang"`   // Language code (e.g. "a" for American English)
	Voice string  `mapstructure:"voice" yaml:"voice"` // Voice model (e.g. "af_heart")
	Speed float64 `mapstructure:"speed" yaml:"speed"` // Speech speed multiplier
}

// ChatterboxCfg holds chatterbox engine defaults.
type ChatterboxCfg struct {
	AudioPrompt       string  `mapstructure:"audio_prompt" yaml:"audio_prompt"` // Reference audio path
	Exaggeration      float64 `mapstructure:"exaggeration" yaml:"exaggeration"`
	CFGWeight         float64 `mapstructure:"cfg_weight" yaml:"cfg_weight"`
	Temperature       float64 `mapstructure:"temperature" yaml:"temperature"`
	TopP              float64 `mapstructure:"top_p" yaml:"top_p"`
	MinP              float64 `mapstructure:"min_p" yaml:"min_p"`
	RepetitionPenalty float64 `mapstructure:"repetition_penalty" yaml:"repetition_penalty"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsCfg{
			Engine:             "kokoro",
			Device:             "cpu",
			Workers:            2,
			ParagraphsPerChunk: 10,
			MergeOutput:        true,
		},
		Kokoro: KokoroCfg{
			Lang:  "a",
			Voice: "af_heart",
			Speed: 1.0,
		},
		Chatterbox: ChatterboxCfg{
			Exaggeration:      0.5,
			CFGWeight:         0.5,
			Temperature:       0.8,
			TopP:              1.0,
			MinP:              0.05,
			RepetitionPenalty: 1.2,
		},
	}
}
