package gateway

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/pool_analysis.txt
	poolAnalysisTemplate string
	//go:embed prompts/prediction.txt
	predictionTemplate string
)

func poolAnalysisPrompt(dataJSON string) string {
	return strings.Replace(poolAnalysisTemplate, "{{DATA}}", dataJSON, 1)
}

func predictionPrompt(profileJSON string) string {
	return strings.Replace(predictionTemplate, "{{PROFILE}}", profileJSON, 1)
}
