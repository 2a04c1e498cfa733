package sessionauth

import (
	"context"

	adminstore "github.com/dalemusser/eventhub/internal/app/store/admins"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserAccounts adapts the user store to Accounts.
func UserAccounts(s *userstore.Store) Accounts { return userAccounts{s} }

// AdminAccounts adapts the admin store to Accounts.
func AdminAccounts(s *adminstore.Store) Accounts { return adminAccounts{s} }

type userAccounts struct{ s *userstore.Store }

func (u userAccounts) Credentials(ctx context.Context, email string) (*Account, error) {
	usr, err := u.s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &Account{
		ID:           usr.ID,
		Name:         usr.Name,
		Email:        usr.Email,
		PasswordHash: usr.PasswordHash,
		DeviceToken:  usr.DeviceToken,
		Role:         usr.Role,
		Avatar:       usr.Avatar,
	}, nil
}

func (u userAccounts) BindDevice(ctx context.Context, id primitive.ObjectID, token string, last models.LastLogin) error {
	return u.s.BindDevice(ctx, id, token, last)
}

type adminAccounts struct{ s *adminstore.Store }

func (a adminAccounts) Credentials(ctx context.Context, email string) (*Account, error) {
	adm, err := a.s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &Account{
		ID:           adm.ID,
		Name:         adm.Name,
		Email:        adm.Email,
		PasswordHash: adm.PasswordHash,
		DeviceToken:  adm.DeviceToken,
		Role:         adm.Role,
		Avatar:       adm.Avatar,
		Permissions:  adm.Permissions,
	}, nil
}

func (a adminAccounts) BindDevice(ctx context.Context, id primitive.ObjectID, token string, last models.LastLogin) error {
	return a.s.BindDevice(ctx, id, token, last)
}
