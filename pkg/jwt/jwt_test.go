package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/AlvaritoMP/OpsFlow-sub000/config"
)

func newTestManager(accessTTL time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:              "test-secret-key-1234567890",
		AccessTokenTTL:         accessTTL,
		RefreshTokenTTLDefault: 24 * time.Hour,
	})
}

func TestManager_GenerateAndParse(t *testing.T) {
	m := newTestManager(15 * time.Minute)

	token, err := m.GenerateAccessToken("user-001", "supervisor")
	if err != nil {
		t.Fatalf("生成 Access Token 应成功: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 应成功: %v", err)
	}
	if claims.UserID != "user-001" {
		t.Errorf("期望 UserID=user-001，实际=%s", claims.UserID)
	}
	if claims.Role != "supervisor" {
		t.Errorf("期望 Role=supervisor，实际=%s", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望 TokenType=access，实际=%s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
}

func TestManager_RefreshTokenType(t *testing.T) {
	m := newTestManager(15 * time.Minute)

	token, err := m.GenerateRefreshToken("user-001", "admin")
	if err != nil {
		t.Fatalf("生成 Refresh Token 应成功: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 应成功: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("期望 TokenType=refresh，实际=%s", claims.TokenType)
	}
}

func TestManager_ParseExpired(t *testing.T) {
	m := newTestManager(-1 * time.Minute) // 生成即过期

	token, err := m.GenerateAccessToken("user-001", "supervisor")
	if err != nil {
		t.Fatalf("生成 Token 应成功: %v", err)
	}

	_, err = m.ParseToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestManager_ParseGarbage(t *testing.T) {
	m := newTestManager(15 * time.Minute)

	_, err := m.ParseToken("not-a-jwt")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestManager_WrongSecret(t *testing.T) {
	m1 := newTestManager(15 * time.Minute)
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:              "another-secret-key-0987654321",
		AccessTokenTTL:         15 * time.Minute,
		RefreshTokenTTLDefault: 24 * time.Hour,
	})

	token, _ := m1.GenerateAccessToken("user-001", "supervisor")
	if _, err := m2.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("跨密钥解析应返回 ErrTokenInvalid，实际: %v", err)
	}
}
