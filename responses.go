package main

import "github.com/hickeroar/codebayes/langclass"

// ClassifyResponse is the answer of the classify endpoint. Trained is false
// when Language is the default answer of an untrained classifier.
type ClassifyResponse struct {
	Language string
	Trained  bool
}

// NewClassifyResponse assembles a ClassifyResponse.
func NewClassifyResponse(c *langclass.Classifier, language string) *ClassifyResponse {
	return &ClassifyResponse{
		Language: language,
		Trained:  c.IsTrained(),
	}
}

// ScoreResponse lists every language's score, best first.
type ScoreResponse struct {
	Scores []langclass.Score
}

// NewScoreResponse assembles a ScoreResponse.
func NewScoreResponse(scores []langclass.Score) *ScoreResponse {
	if scores == nil {
		scores = []langclass.Score{}
	}
	return &ScoreResponse{Scores: scores}
}

// InfoResponse describes the classifier.
type InfoResponse struct {
	Trained         bool
	Languages       []string
	DefaultLanguage string
	Strategy        string
}

// NewInfoResponse assembles an InfoResponse.
func NewInfoResponse(c *langclass.Classifier) *InfoResponse {
	return &InfoResponse{
		Trained:         c.IsTrained(),
		Languages:       c.Languages(),
		DefaultLanguage: c.DefaultLanguage(),
		Strategy:        string(c.Strategy()),
	}
}
