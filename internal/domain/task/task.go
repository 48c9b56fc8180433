package task

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("task not found")
	ErrNotOwner          = errors.New("not the task owner")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusAssigned  Status = "assigned"
	StatusCompleted Status = "completed"
)

// open→assigned is performed only by the assignment engine;
// assigned→completed only by the owning customer.
var validTransitions = map[Status][]Status{
	StatusOpen:      {StatusAssigned},
	StatusAssigned:  {StatusCompleted},
	StatusCompleted: {},
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

type Task struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Address            string     `json:"address"`
	Category           string     `json:"category"`
	OwnerID            uuid.UUID  `json:"owner_id"`
	Deadline           time.Time  `json:"deadline"`
	Status             Status     `json:"status"`
	AssignedProviderID *uuid.UUID `json:"assigned_provider_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func New(ownerID uuid.UUID, title, description, address, category string, deadline time.Time) Task {
	now := time.Now().UTC()
	return Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Address:     address,
		Category:    category,
		OwnerID:     ownerID,
		Deadline:    deadline,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WithWinningBid is the read-side projection for listings: an assigned task
// carries the amount of the bid that won it.
type WithWinningBid struct {
	Task
	WinningBidAmount *int64 `json:"winning_bid_amount,omitempty"`
}

type ListFilters struct {
	Category           *string
	Address            *string
	Status             *Status
	OwnerID            *uuid.UUID
	AssignedProviderID *uuid.UUID
}
