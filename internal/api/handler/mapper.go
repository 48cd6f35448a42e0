package handler

import (
	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

// --- Domain → Response ---

func toUserResponse(a *domain.Account) userResponse {
	resp := userResponse{
		ID:       a.ID,
		Email:    a.Email,
		Username: a.Username,
		IsActive: a.IsActive,
		Roles:    string(a.Role),
	}
	if !a.TimeAdded.IsZero() {
		t := a.TimeAdded
		resp.TimeAdded = &t
	}
	return resp
}

func toUserListResponse(page *ports.AccountPage) userListResponse {
	items := make([]userResponse, 0, len(page.Items))
	for _, a := range page.Items {
		items = append(items, toUserResponse(a))
	}
	return userListResponse{Items: items, Total: page.Total}
}

func toTokenResponse(p *ports.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
	}
}

// --- Request → Service input ---

func toCreateInput(req createUserRequest) (ports.CreateAccountInput, error) {
	role, ok := domain.ParseRole(req.Roles)
	if !ok {
		return ports.CreateAccountInput{}, domain.ErrInvalidRole
	}
	return ports.CreateAccountInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		IsActive: req.IsActive,
	}, nil
}
