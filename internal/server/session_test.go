package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/auth"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/documents"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubSessions struct {
	claims auth.Claims
	err    error
}

func (s stubSessions) Request(*http.Request) (auth.Claims, error) {
	return s.claims, s.err
}

type stubOwners struct {
	owner documents.OwnerID
	err   error
}

func (s stubOwners) Resolve(context.Context, auth.Claims) (documents.OwnerID, error) {
	return s.owner, s.err
}

func TestRequireOwnerLogLevels(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		wantLevel zapcore.Level
	}{
		{"expired", auth.ErrExpiredToken, zapcore.InfoLevel},
		{"invalid", auth.ErrInvalidToken, zapcore.WarnLevel},
		{"missing", auth.ErrMissingToken, zapcore.DebugLevel},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			recorder := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(recorder)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/documents", http.NoBody)

			core, logs := observer.New(zapcore.DebugLevel)
			handler := &httpHandler{
				sessions: stubSessions{err: testCase.err},
				owners:   stubOwners{},
				logger:   zap.New(core),
			}
			handler.requireOwner(ctx)

			if recorder.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", recorder.Code)
			}
			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected exactly one log entry, got %d", len(entries))
			}
			if entries[0].Level != testCase.wantLevel {
				t.Fatalf("expected %s, got %s", testCase.wantLevel, entries[0].Level)
			}
		})
	}
}

func TestRequireOwnerPlacesOwnerOnContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, router := gin.CreateTestContext(recorder)

	handler := &httpHandler{
		sessions: stubSessions{claims: auth.Claims{UserID: "u-1"}},
		owners:   stubOwners{owner: "u-1"},
		logger:   zap.NewNop(),
	}
	var seen documents.OwnerID
	router.GET("/documents", handler.requireOwner, func(c *gin.Context) {
		seen, _ = documents.OwnerFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})
	ctx.Request = httptest.NewRequest(http.MethodGet, "/documents", http.NoBody)
	router.HandleContext(ctx)

	if seen != "u-1" {
		t.Fatalf("expected owner on request context, got %q", seen)
	}
}

func TestRequireOwnerRejectsUnresolvableOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/documents", http.NoBody)

	handler := &httpHandler{
		sessions: stubSessions{claims: auth.Claims{}},
		owners:   stubOwners{err: errors.New("users: invalid identity")},
		logger:   zap.NewNop(),
	}
	handler.requireOwner(ctx)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}
