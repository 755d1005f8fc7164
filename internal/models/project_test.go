package models

import (
	"testing"
	"time"
)

func TestParseProjectStatus(t *testing.T) {
	for _, status := range ProjectStatuses() {
		parsed, err := ParseProjectStatus(string(status))
		if err != nil {
			t.Errorf("Expected %q to parse, got %v", status, err)
		}
		if parsed != status {
			t.Errorf("Expected %q, got %q", status, parsed)
		}
	}

	for _, raw := range []string{"", "launched", "INQUIRY", "in progress"} {
		if _, err := ParseProjectStatus(raw); err == nil {
			t.Errorf("Expected %q to be rejected", raw)
		}
	}
}

func TestProjectStatusDisplay(t *testing.T) {
	tests := []struct {
		status ProjectStatus
		want   string
	}{
		{StatusInquiry, "Initial Inquiry"},
		{StatusPlanning, "Planning & Design"},
		{StatusDevelopment, "Development"},
		{StatusReview, "Client Review"},
		{StatusCompleted, "Completed"},
		{StatusCancelled, "Cancelled"},
	}
	for _, tt := range tests {
		if got := tt.status.Display(); got != tt.want {
			t.Errorf("Display(%s) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestProjectStatusIsTerminal(t *testing.T) {
	for _, status := range ProjectStatuses() {
		want := status == StatusCompleted || status == StatusCancelled
		if got := status.IsTerminal(); got != want {
			t.Errorf("IsTerminal(%s) = %t, want %t", status, got, want)
		}
	}
}

func TestParseEventType(t *testing.T) {
	valid := []string{"status_change", "milestone", "note", "file_upload", "client_feedback", "meeting", "payment"}
	for _, raw := range valid {
		if _, err := ParseEventType(raw); err != nil {
			t.Errorf("Expected %q to parse, got %v", raw, err)
		}
	}
	if _, err := ParseEventType("deployment"); err == nil {
		t.Error("Expected unknown event type to be rejected")
	}
}

func TestProjectIsOverdue(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name     string
		project  Project
		expected bool
	}{
		{"no expected completion", Project{Status: StatusDevelopment}, false},
		{"future expected completion", Project{Status: StatusDevelopment, ExpectedCompletion: &future}, false},
		{"past expected completion", Project{Status: StatusDevelopment, ExpectedCompletion: &past}, true},
		{"completed project never overdue", Project{Status: StatusCompleted, ExpectedCompletion: &past}, false},
		{"cancelled project never overdue", Project{Status: StatusCancelled, ExpectedCompletion: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.project.IsOverdue(); got != tt.expected {
				t.Errorf("IsOverdue() = %t, want %t", got, tt.expected)
			}
		})
	}
}

func TestIsAccountLocked(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Minute)

	if (&AdminCredential{}).IsAccountLocked() {
		t.Error("Expected nil locked_until to mean unlocked")
	}
	if (&AdminCredential{LockedUntil: &past}).IsAccountLocked() {
		t.Error("Expected expired lockout to mean unlocked")
	}
	if !(&AdminCredential{LockedUntil: &future}).IsAccountLocked() {
		t.Error("Expected future locked_until to mean locked")
	}
}
