package gemini

import "google.golang.org/genai"

// vocabularyResponse is the JSON shape requested for extraction.
type vocabularyResponse struct {
	Words []struct {
		Word    string `json:"word"`
		Meaning string `json:"meaning"`
		Example string `json:"example"`
	} `json:"words"`
}

// storyResponse is the JSON shape requested for story analysis.
type storyResponse struct {
	Title       string   `json:"title"`
	TargetWords []string `json:"targetWords"`
	Questions   []struct {
		Type          string   `json:"type"`
		TargetWord    string   `json:"targetWord"`
		Question      string   `json:"question"`
		CorrectAnswer string   `json:"correctAnswer"`
		Options       []string `json:"options"`
	} `json:"questions"`
}

func stringSchema() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

var vocabularySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"words": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"word":    stringSchema(),
					"meaning": stringSchema(),
					"example": stringSchema(),
				},
				Required: []string{"word", "meaning", "example"},
			},
		},
	},
	Required: []string{"words"},
}

var storySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       stringSchema(),
		"targetWords": {Type: genai.TypeArray, Items: stringSchema()},
		"questions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"type":          {Type: genai.TypeString, Enum: []string{"FILL_BLANK", "MATCHING"}},
					"targetWord":    stringSchema(),
					"question":      stringSchema(),
					"correctAnswer": stringSchema(),
					"options":       {Type: genai.TypeArray, Items: stringSchema()},
				},
				Required: []string{"type", "targetWord", "question", "correctAnswer"},
			},
		},
	},
	Required: []string{"title", "targetWords", "questions"},
}
