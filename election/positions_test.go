// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/testutil"
)

func TestCreatePosition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreatePosition(ctx, PositionInput{Description: "  President ", MaximumWinners: 1})
	if err != nil {
		t.Fatalf("CreatePosition() error = %v", err)
	}
	if p.ID == 0 || p.Description != "President" {
		t.Errorf("CreatePosition() = %+v", p)
	}

	_, err = svc.CreatePosition(ctx, PositionInput{Description: "President", MaximumWinners: 2})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate CreatePosition() error = %v, want ErrAlreadyExists", err)
	}

	positions, err := svc.ListPositions(ctx)
	if err != nil {
		t.Fatalf("ListPositions() error = %v", err)
	}
	if len(positions) != 1 {
		t.Errorf("Expected 1 position, got %d", len(positions))
	}
}

func TestCreatePositionValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		in   PositionInput
	}{
		{"empty description", PositionInput{Description: "", MaximumWinners: 1}},
		{"blank description", PositionInput{Description: "   ", MaximumWinners: 1}},
		{"long description", PositionInput{Description: strings.Repeat("x", 101), MaximumWinners: 1}},
		{"zero winners", PositionInput{Description: "Treasurer", MaximumWinners: 0}},
		{"negative winners", PositionInput{Description: "Treasurer", MaximumWinners: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreatePosition(context.Background(), tt.in); !errors.Is(err, ErrValidation) {
				t.Errorf("CreatePosition() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestUpdatePosition(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	id := testutil.CreateTestPosition(t, conn, "President", 1)
	testutil.CreateTestPosition(t, conn, "Secretary", 1)

	p, err := svc.UpdatePosition(ctx, id, PositionInput{Description: "Chair", MaximumWinners: 3})
	if err != nil {
		t.Fatalf("UpdatePosition() error = %v", err)
	}
	if p.Description != "Chair" || p.MaximumWinners != 3 {
		t.Errorf("UpdatePosition() = %+v", p)
	}

	got, err := svc.GetPosition(ctx, id)
	if err != nil {
		t.Fatalf("GetPosition() error = %v", err)
	}
	if *got != *p {
		t.Errorf("GetPosition() = %+v, want %+v", got, p)
	}

	if _, err := svc.UpdatePosition(ctx, id, PositionInput{Description: "Secretary", MaximumWinners: 1}); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("UpdatePosition() to taken description error = %v, want ErrAlreadyExists", err)
	}
	if _, err := svc.UpdatePosition(ctx, 999, PositionInput{Description: "Ghost", MaximumWinners: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePosition() missing error = %v, want ErrNotFound", err)
	}
}

func TestDeletePositionCascades(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	president := testutil.CreateTestPosition(t, conn, "President", 1)
	secretary := testutil.CreateTestPosition(t, conn, "Secretary", 1)
	a := testutil.CreateTestCandidate(t, conn, president, "Ann", models.StatusApproved)
	b := testutil.CreateTestCandidate(t, conn, president, "Ben", models.StatusPending)
	c := testutil.CreateTestCandidate(t, conn, secretary, "Cat", models.StatusApproved)

	alice := testutil.CreateTestUser(t, conn, "alice", false)
	testutil.CreateTestVote(t, conn, alice.ID, a, president)
	testutil.CreateTestVote(t, conn, alice.ID, c, secretary)

	if err := svc.DeletePosition(ctx, president); err != nil {
		t.Fatalf("DeletePosition() error = %v", err)
	}

	for _, id := range []int64{a, b} {
		if _, err := svc.GetCandidate(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("candidate %d should be gone, got %v", id, err)
		}
	}
	if n := testutil.CountRows(t, conn, "votes", "candidate_id = $1", a); n != 0 {
		t.Errorf("Expected votes for deleted candidates to cascade, %d remain", n)
	}
	if n := testutil.CountRows(t, conn, "votes", ""); n != 1 {
		t.Errorf("Expected the other position's vote to remain, got %d votes", n)
	}

	if err := svc.DeletePosition(ctx, president); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeletePosition() twice error = %v, want ErrNotFound", err)
	}
}
