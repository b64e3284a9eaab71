package domain

import "strings"

// MediaUpload is an image attached to a content submission.
type MediaUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (m *MediaUpload) Size() int64 {
	if m == nil {
		return 0
	}
	return int64(len(m.Data))
}

// Submission is a mutating content payload that carries media.
type Submission interface {
	Upload() *MediaUpload
	Normalize()
}

type ShowSubmission struct {
	Title       string       `validate:"required,max=200"`
	Description string       `validate:"required,max=5000"`
	Genre       string       `validate:"required,max=100"`
	Category    Category     `validate:"required,oneof=Movie Series"`
	MovieLink   string       `validate:"omitempty,http_url,max=2048"`
	Image       *MediaUpload `validate:"required"`
}

func (s *ShowSubmission) Upload() *MediaUpload { return s.Image }

func (s *ShowSubmission) Normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	s.Genre = strings.TrimSpace(s.Genre)
	s.MovieLink = strings.TrimSpace(s.MovieLink)
}

type EpisodeSubmission struct {
	ShowID      int64        `validate:"required,gt=0"`
	Title       string       `validate:"required,max=200"`
	Description string       `validate:"required,max=5000"`
	EpisodeLink string       `validate:"required,http_url,max=2048"`
	Image       *MediaUpload `validate:"required"`
}

func (s *EpisodeSubmission) Upload() *MediaUpload { return s.Image }

func (s *EpisodeSubmission) Normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	s.EpisodeLink = strings.TrimSpace(s.EpisodeLink)
}
