package booking

import (
	"context"

	"github.com/goliatone/go-errors"
)

// IdentityStore is the slice of the user repository the provider needs
type IdentityStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// UserProvider resolves identities against the account store
type UserProvider struct {
	store     IdentityStore
	Validator func(*User) error
	logger    Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store IdentityStore) *UserProvider {
	return &UserProvider{
		store:     store,
		logger:    defLogger{},
		Validator: defaultValidator,
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

func (u *UserProvider) validate(user *User) error {
	if u.Validator != nil {
		return u.Validator(user)
	}
	return defaultValidator(user)
}

// VerifyIdentity will find the user, compare to the password, and return
// identity. A missing account and a wrong password collapse into the same
// error so callers cannot probe which emails are registered.
func (u UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		return nil, ErrMismatchedHashAndPassword
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	if err := u.validate(user); err != nil {
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}

// FindIdentityByIdentifier resolves an identity without checking
// credentials. Used to rebuild the request principal from a token subject.
func (u UserProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound.Clone().WithMetadata(map[string]any{"identifier": identifier})
		}
		return nil, err
	}

	if user == nil {
		return nil, ErrIdentityNotFound
	}

	if err := u.validate(user); err != nil {
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}

type authIdentity struct {
	id        int64
	email     string
	firstName string
	lastName  string
	admin     bool
}

// NewIdentityFromUser adapts a stored account into the identity surface
// the rest of the package works with.
func NewIdentityFromUser(user *User) Identity {
	return authIdentity{
		id:        user.ID,
		email:     user.Email,
		firstName: user.FirstName,
		lastName:  user.LastName,
		admin:     user.Admin,
	}
}

func (a authIdentity) ID() int64 {
	return a.id
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) FirstName() string {
	return a.firstName
}

func (a authIdentity) LastName() string {
	return a.lastName
}

func (a authIdentity) IsAdmin() bool {
	return a.admin
}

var _ Identity = authIdentity{}

func defaultValidator(u *User) error {
	if u.Email == "" {
		return errors.New("user has no email", errors.CategoryAuth).
			WithTextCode("INVALID_ACCOUNT").
			WithMetadata(map[string]any{"user_id": u.ID})
	}
	return nil
}
