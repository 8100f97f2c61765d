package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/biz/usecase"
	"github.com/devricklin/privacy-guard/internal/data"
)

// probe sends a text to an analyzer and prints the fused classification.
//
//	probe -url http://127.0.0.1:5000 "mi correo es ana@example.com"
func main() {
	godotenv.Load()

	defaultURL := os.Getenv("ANALYZER_URL")
	if defaultURL == "" {
		defaultURL = "http://127.0.0.1:5000"
	}
	analyzerURL := flag.String("url", defaultURL, "analyzer base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	local := flag.Bool("local", false, "skip the analyzer and use local patterns only")
	flag.Parse()

	text := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "usage: probe [-url URL] [-local] TEXT")
		os.Exit(2)
	}

	var classifier *usecase.ClassifierUsecase
	if *local {
		classifier = usecase.NewClassifierUsecase(nil)
	} else {
		classifier = usecase.NewClassifierUsecase(data.NewAnalyzerRepo(*analyzerURL, *timeout))
	}

	c, err := classifier.Classify(context.Background(), text, domain.DefaultSettings())
	if err != nil {
		fmt.Fprintf(os.Stderr, "classify failed: %v\n", err)
		os.Exit(1)
	}

	var masked []string
	for _, m := range usecase.ExtractMatches(text, c.Category) {
		masked = append(masked, usecase.MaskValue(m, c.Category))
	}

	out, _ := json.MarshalIndent(map[string]any{
		"expone":  c.Detected(),
		"tipo":    c.Category.String(),
		"matches": masked,
	}, "", "  ")
	fmt.Println(string(out))
}
