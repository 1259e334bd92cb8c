package main

// Run one gateway operation from the terminal:
//   go run ./cmd/prompttest -op analysis -role "Data Scientist"
//   go run ./cmd/prompttest -op prediction -skills "Python, SQL" -exp 4 -education B.Sc

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"candidate-insights/internal/bootstrap"
	"candidate-insights/internal/candidates"
	"candidate-insights/internal/gateway"
	"candidate-insights/internal/query"
	"candidate-insights/internal/shared/config"
)

func main() {
	cfg := config.Load()

	op := flag.String("op", gateway.OpPoolAnalysis, "Operation: analysis or prediction")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	search := flag.String("search", "", "Filter the pool by name or skill before analysis")
	role := flag.String("role", query.AllRoles, "Filter the pool by job role before analysis")
	name := flag.String("name", "", "Profile name")
	skills := flag.String("skills", "", "Profile skills")
	exp := flag.Int("exp", -1, "Profile experience years")
	education := flag.String("education", "", "Profile education")
	certs := flag.String("certifications", "", "Profile certifications")
	jobRole := flag.String("job-role", "", "Profile job role")
	salary := flag.Float64("salary", -1, "Profile salary expectation")
	projects := flag.Int("projects", -1, "Profile projects count")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	flag.Parse()

	cfg.LLMProvider = *provider
	cfg.LLMModel = *model

	ctx := context.Background()
	app, err := bootstrap.Build(ctx, cfg, bootstrap.Options{Source: candidates.EmbeddedSource{}})
	if err != nil {
		exitErr(fmt.Sprintf("startup: %v", err))
	}
	defer app.Close()

	var result any
	switch strings.TrimSpace(*op) {
	case gateway.OpPoolAnalysis:
		pool := query.FilterCandidates(app.Store.All(), *search, *role)
		result, err = app.Gateway.RunPoolAnalysis(ctx, pool)
	case gateway.OpPrediction:
		profile := gateway.Profile{}
		if *name != "" {
			profile.Name = name
		}
		if *skills != "" {
			profile.Skills = skills
		}
		if *exp >= 0 {
			profile.ExperienceYears = exp
		}
		if *education != "" {
			profile.Education = education
		}
		if *certs != "" {
			profile.Certifications = certs
		}
		if *jobRole != "" {
			profile.JobRole = jobRole
		}
		if *salary >= 0 {
			profile.SalaryExpectation = salary
		}
		if *projects >= 0 {
			profile.ProjectsCount = projects
		}
		if err := gateway.ValidateProfile(profile); err != nil {
			exitErr(fmt.Sprintf("invalid profile: %v", err))
		}
		result, err = app.Gateway.RunPrediction(ctx, profile)
	default:
		exitErr(fmt.Sprintf("unsupported operation: %s", *op))
	}
	if err != nil {
		exitErr(fmt.Sprintf("%s: %v", *op, err))
	}

	raw, err := json.Marshal(result)
	if err != nil {
		exitErr(fmt.Sprintf("encode result: %v", err))
	}
	pretty, err := prettyJSON(raw)
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}

	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if len(pretty) == 0 || pretty[len(pretty)-1] != '\n' {
		_, _ = os.Stdout.Write([]byte("\n"))
	}
}

func prettyJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
