package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

var (
	ErrShowNotFound     = fmt.Errorf("show %w", ErrNotFound)
	ErrEpisodeNotFound  = fmt.Errorf("episode %w", ErrNotFound)
	ErrAccountNotFound  = fmt.Errorf("account %w", ErrNotFound)
	ErrCampaignNotFound = fmt.Errorf("campaign %w", ErrNotFound)
	ErrEmailTaken       = fmt.Errorf("email %w", ErrAlreadyExists)
)
