// internal/app/store/admins/adminstore.go
package adminstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/normalize"
	"github.com/dalemusser/eventhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateEmail is returned when another admin already uses the email.
var ErrDuplicateEmail = errors.New("an admin with this email already exists")

var errBadRole = errors.New("invalid admin role")

// Upsert outcomes reported by UpsertByEmail.
const (
	Created = "Created"
	Updated = "Updated"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("admins")}
}

// GetByID loads an admin. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var a models.Admin
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByEmail loads an admin by normalized email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new admin with a null device token.
func (s *Store) Create(ctx context.Context, a models.Admin) (models.Admin, error) {
	a.ID = primitive.NewObjectID()
	a.Name = normalize.Name(a.Name)
	a.Email = normalize.Email(a.Email)
	a.DeviceToken = nil
	if a.Role == "" {
		a.Role = models.AdminRoleAdmin
	}
	if !models.IsValidAdminRole(a.Role) {
		return models.Admin{}, errBadRole
	}
	if a.Permissions == nil {
		a.Permissions = []string{}
	}

	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Admin{}, ErrDuplicateEmail
		}
		return models.Admin{}, err
	}
	return a, nil
}

// UpsertByEmail creates the admin or, when the email exists, replaces its
// name, role and password hash. New admins get DefaultAdminPermissions.
// Returns Created or Updated.
func (s *Store) UpsertByEmail(ctx context.Context, name, email, role, passwordHash string) (string, error) {
	if !models.IsValidAdminRole(role) {
		return "", errBadRole
	}
	now := time.Now()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{
			"$set": bson.M{
				"name":          normalize.Name(name),
				"role":          role,
				"password_hash": passwordHash,
				"updated_at":    now,
			},
			"$setOnInsert": bson.M{
				"avatar":       "",
				"phone":        "",
				"bio":          "",
				"permissions":  models.DefaultAdminPermissions,
				"device_token": nil,
				"created_at":   now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return "", err
	}
	if res.UpsertedCount > 0 {
		return Created, nil
	}
	return Updated, nil
}

// BindDevice stores the device token and login snapshot in one update.
func (s *Store) BindDevice(ctx context.Context, id primitive.ObjectID, deviceToken string, last models.LastLogin) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"device_token": deviceToken,
		"last_login":   last,
		"updated_at":   time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ClearDeviceToken sets the device token to null.
func (s *Store) ClearDeviceToken(ctx context.Context, id primitive.ObjectID) (found bool, err error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"device_token": nil,
		"updated_at":   time.Now(),
	}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// ProfileUpdate holds editable admin fields. Nil means unchanged.
type ProfileUpdate struct {
	Name         *string
	Email        *string
	Phone        *string
	Bio          *string
	Avatar       *string
	PasswordHash *string
}

// UpdateProfile applies upd and returns the updated admin.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.Admin, error) {
	set := bson.M{"updated_at": time.Now()}
	if upd.Name != nil {
		set["name"] = normalize.Name(*upd.Name)
	}
	if upd.Email != nil {
		set["email"] = normalize.Email(*upd.Email)
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.Avatar != nil {
		set["avatar"] = *upd.Avatar
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}

	var a models.Admin
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &a, nil
}
