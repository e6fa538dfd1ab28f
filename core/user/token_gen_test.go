package user

import (
	"testing"
	"time"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
)

func TestMakeVerifyToken(t *testing.T) {
	conf := &core.Config{
		SecretKey: []byte("secret"),
		Server:    core.ServerConfig{PasswordResetTimeout: 3 * 24 * time.Hour},
	}

	now := time.Now()
	usr := User{
		ID:        "6fa1fcf9-0f35-4b26-bc27-6cf4eb013c40",
		Name:      "T",
		Email:     "t@test.test",
		CreatedAt: now,
		LastLogin: now,
	}
	_ = usr.SetPassword("pwd")

	validToken, err := MakeToken(usr, conf)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}

	// generate an expired token
	dayLate := conf.Server.PasswordResetTimeout + (24 * time.Hour)
	NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := MakeToken(usr, conf)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	NowFunc = time.Now // reset

	tests := []struct {
		name    string
		usr     User
		token   string
		wantErr error
	}{
		{name: "no token", usr: usr, wantErr: ErrInvalidToken},
		{name: "invalid parts len", usr: usr, token: "lmaooolol", wantErr: ErrInvalidToken},
		{name: "invalid base32", usr: usr, token: "hahaha-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "invalid timestamp", usr: usr, token: "NRXWY-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "invalid token", usr: usr, token: "HE4TS-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "expired token", usr: usr, token: expiredToken, wantErr: ErrTokenExpired},
		{name: "valid token", usr: usr, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifyToken(tt.usr, tt.token, conf); err != tt.wantErr {
				t.Errorf("VerifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenInvalidatedByUse(t *testing.T) {
	conf := &core.Config{
		SecretKey: []byte("secret"),
		Server:    core.ServerConfig{PasswordResetTimeout: 3 * 24 * time.Hour},
	}

	usr := User{ID: "u1", Email: "t@test.test"}
	_ = usr.SetPassword("oldpwd")

	token, err := MakeToken(usr, conf)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	if err = VerifyToken(usr, token, conf); err != nil {
		t.Fatalf("VerifyToken() error = %v, want nil", err)
	}

	// changing the password invalidates outstanding tokens
	_ = usr.SetPassword("newpwd")
	if err = VerifyToken(usr, token, conf); err != ErrInvalidToken {
		t.Errorf("VerifyToken() error = %v, wantErr %v", err, ErrInvalidToken)
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	usr := User{ID: "6fa1fcf9-0f35-4b26-bc27-6cf4eb013c40"}

	uid := EncodeUID(usr)
	id, err := DecodeUID(uid)
	if err != nil {
		t.Fatalf("DecodeUID() failed: %v", err)
	}
	if id != usr.ID {
		t.Errorf("DecodeUID() = %s, want %s", id, usr.ID)
	}

	if _, err = DecodeUID("%%%not-base64%%%"); err == nil {
		t.Error("DecodeUID() expected error on invalid input")
	}
}
