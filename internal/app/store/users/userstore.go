// internal/app/store/users/userstore.go
package userstore

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

// ErrDuplicateEmail is returned when an email is already registered.
var ErrDuplicateEmail = errors.New("a user with this email already exists")

var errBadRole = errors.New("invalid role")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDs loads the users with the given ids, keyed by id.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// Create inserts a new account. The device token starts out null.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	u.DeviceToken = nil

	if u.Role == "" {
		u.Role = models.RoleAudience
	}
	if !models.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	u.RoleType = models.RoleTypeFor(u.Role)
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	if u.Interests == nil {
		u.Interests = []string{}
	}
	if u.Role == models.RoleOrganizer && u.OrganizerProfile == nil {
		u.OrganizerProfile = &models.OrganizerProfile{VerificationStatus: models.VerificationPending}
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// BindDevice stores a new device token together with the login snapshot in
// a single update. Returns mongo.ErrNoDocuments if the user is gone.
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

// ClearDeviceToken sets the device token to null. found is false when no
// user has the given id.
func (s *Store) ClearDeviceToken(ctx context.Context, id primitive.ObjectID) (found bool, err error) {
	return s.clear(ctx, bson.M{"_id": id})
}

// ClearDeviceTokenByEmail is ClearDeviceToken keyed by email.
func (s *Store) ClearDeviceTokenByEmail(ctx context.Context, email string) (found bool, err error) {
	return s.clear(ctx, bson.M{"email": normalize.Email(email)})
}

func (s *Store) clear(ctx context.Context, filter bson.M) (bool, error) {
	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"device_token": nil,
		"updated_at":   time.Now(),
	}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// ProfileUpdate holds the self-service profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name        *string
	Bio         *string
	Phone       *string
	City        *string
	State       *string
	Location    *string
	Gender      *string
	DateOfBirth *time.Time
	Interests   []string
	Social      *models.Social
}

// UpdateProfile applies upd and returns the updated user.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}

	if upd.Name != nil {
		set["name"] = normalize.Name(*upd.Name)
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.City != nil {
		set["city"] = *upd.City
	}
	if upd.State != nil {
		set["state"] = *upd.State
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Gender != nil {
		set["gender"] = *upd.Gender
	}
	if upd.DateOfBirth != nil {
		set["date_of_birth"] = *upd.DateOfBirth
	}
	if upd.Interests != nil {
		set["interests"] = upd.Interests
	}
	if upd.Social != nil {
		set["social"] = *upd.Social
	}

	var u models.User
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListByRoles returns users whose role is in roles, newest first.
func (s *Store) ListByRoles(ctx context.Context, roles ...string) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.find(ctx, bson.M{"role": bson.M{"$in": roles}}, opts)
}

// Count returns the total number of users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountByRoles returns the number of users whose role is in roles.
func (s *Store) CountByRoles(ctx context.Context, roles ...string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"role": bson.M{"$in": roles}})
}

// CountVerifiedOrganizers returns the number of organizers whose profile
// has been verified.
func (s *Store) CountVerifiedOrganizers(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"role":                                  models.RoleOrganizer,
		"organizer_profile.verification_status": models.VerificationVerified,
	})
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
