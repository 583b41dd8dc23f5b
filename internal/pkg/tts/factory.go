package tts

import "fmt"

// NewSynthesizer 按引擎名创建 TTS 引擎
func NewSynthesizer(engine string, config Config) (Synthesizer, error) {
	switch engine {
	case "", "volcano":
		return NewVolcanoEngine(config)
	case "basic":
		return NewBasicEngine(config)
	default:
		return nil, fmt.Errorf("unsupported tts engine: %s", engine)
	}
}
