// Package inference fills the descriptive fields of an ad group from its
// member file names and OCR text.
//
// Product and angle are chosen from closed vocabularies. Each candidate is
// scored by the strongest signal it has: an exact match in a file name, an
// exact match in OCR text, a keyword hint, or a fuzzy match. The best score
// becomes the field confidence; a score of zero leaves the field blank.
package inference

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/textutil"
)

// maxGram is the longest run of adjacent words joined when matching
// multi-word vocabulary entries such as "SocialProof".
const maxGram = 3

var (
	creatorNamePattern   = regexp.MustCompile(`(?i)(?:creator|ugc|by)[-_ ]([a-z0-9]+)`)
	creatorHandlePattern = regexp.MustCompile(`@([A-Za-z0-9_.]+)`)
)

// Engine infers group fields.
type Engine struct {
	cfg   config.Inference
	offer []*regexp.Regexp
}

// NewEngine compiles the offer markers of cfg.
func NewEngine(cfg config.Inference) (*Engine, error) {
	e := &Engine{cfg: cfg}
	for _, marker := range cfg.OfferMarkers {
		re, err := regexp.Compile(marker)
		if err != nil {
			return nil, fmt.Errorf("invalid offer marker %q: %w", marker, err)
		}
		e.offer = append(e.offer, re)
	}
	return e, nil
}

// signals is the text evidence gathered from a group's members.
type signals struct {
	names     []string
	nameGrams map[string]bool
	ocr       []string
	ocrGrams  map[string]bool
	words     map[string]bool
}

func collect(g *models.AdGroup) signals {
	s := signals{
		nameGrams: make(map[string]bool),
		ocrGrams:  make(map[string]bool),
		words:     make(map[string]bool),
	}
	for _, a := range g.Assets {
		s.names = append(s.names, a.Asset.Name)
		words := textutil.SplitName(a.Asset.Name)
		addGrams(s.nameGrams, words)
		for _, w := range words {
			s.words[w] = true
		}
		if strings.TrimSpace(a.OCRText) == "" {
			continue
		}
		s.ocr = append(s.ocr, a.OCRText)
		words = textutil.Words(a.OCRText)
		addGrams(s.ocrGrams, words)
		for _, w := range words {
			s.words[w] = true
		}
	}
	return s
}

func addGrams(into map[string]bool, words []string) {
	for i := range words {
		gram := ""
		for j := i; j < len(words) && j < i+maxGram; j++ {
			gram += words[j]
			into[gram] = true
		}
	}
}

// Infer sets product, angle, hook, creator and offer on g along with their
// confidences. The group confidence is left untouched.
func (e *Engine) Infer(g *models.AdGroup, inputs models.UserInputs) {
	s := collect(g)

	g.Product, g.Confidence.Product = e.best(s, e.productCandidates(inputs.Client), nil)
	g.Angle, g.Confidence.Angle = e.best(s, e.cfg.AngleOptions, e.cfg.AngleKeywords)
	g.Offer, g.Confidence.Offer = e.inferOffer(s)
	g.Hook = e.inferHook(s)
	g.Creator = inferCreator(s)
}

// InferAll runs Infer over every group.
func (e *Engine) InferAll(groups []*models.AdGroup, inputs models.UserInputs) {
	for _, g := range groups {
		e.Infer(g, inputs)
	}
}

func (e *Engine) productCandidates(client string) []string {
	var out []string
	for _, p := range e.cfg.Products[client] {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	for _, p := range e.cfg.ClientOptions {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// best returns the highest scoring candidate. Ties keep the earlier one.
func (e *Engine) best(s signals, candidates []string, keywords map[string][]string) (string, float64) {
	var value string
	var score float64
	for _, c := range candidates {
		if sc := e.score(s, c, keywords[c]); sc > score {
			value, score = c, sc
		}
	}
	return value, round(score)
}

func (e *Engine) score(s signals, candidate string, keywords []string) float64 {
	key := textutil.Squash(candidate)
	if key == "" {
		return 0
	}
	sc := e.cfg.Scores
	switch {
	case s.nameGrams[key]:
		return sc.FilenameExact
	case s.ocrGrams[key]:
		return sc.OCRExact
	}
	for _, kw := range keywords {
		if s.words[strings.ToLower(kw)] {
			return sc.Keyword
		}
	}

	best := 0.0
	for _, grams := range []map[string]bool{s.nameGrams, s.ocrGrams} {
		for gram := range grams {
			if len(gram) < textutil.MinTokenLength {
				continue
			}
			if sim := textutil.Similarity(key, gram); sim > best {
				best = sim
			}
		}
	}
	if best < e.cfg.FuzzyThreshold {
		return 0
	}
	return best * sc.FuzzyWeight
}

func (e *Engine) inferOffer(s signals) (bool, float64) {
	for _, name := range s.names {
		spaced := strings.Join(textutil.SplitName(name), " ")
		if e.matchesOffer(name) || e.matchesOffer(spaced) {
			return true, e.cfg.Scores.OfferFilename
		}
	}
	for _, text := range s.ocr {
		if e.matchesOffer(text) {
			return true, e.cfg.Scores.OfferOCR
		}
	}
	return false, 0
}

func (e *Engine) matchesOffer(text string) bool {
	for _, re := range e.offer {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// inferHook returns the first non-empty OCR line, truncated.
func (e *Engine) inferHook(s signals) string {
	for _, text := range s.ocr {
		for _, line := range strings.Split(text, "\n") {
			line = strings.Join(strings.Fields(line), " ")
			if line == "" {
				continue
			}
			return truncate(line, e.cfg.HookMaxLength)
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

func inferCreator(s signals) string {
	for _, name := range s.names {
		if m := creatorNamePattern.FindStringSubmatch(name); m != nil {
			return m[1]
		}
	}
	for _, text := range s.ocr {
		if m := creatorHandlePattern.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}
