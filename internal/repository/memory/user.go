package memory

import (
	"context"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) user.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.findByEmail(email)
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return r.withEmployee(u), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return r.withEmployee(u), nil
}

func (r *userRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.findByEmail(newUser.Email); exists {
		return user.User{}, user.ErrUserEmailExists
	}

	if newUser.ID == "" {
		newUser.ID = uuid.Must(uuid.NewV7()).String()
	}
	newUser.Email = strings.ToLower(newUser.Email)
	now := r.store.now()
	newUser.CreatedAt = now
	newUser.UpdatedAt = now
	r.store.users[newUser.ID] = newUser
	return newUser, nil
}

func (r *userRepository) LinkGoogleAccount(ctx context.Context, googleID string, email string) (user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.findByEmail(email)
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	u.GoogleID = &googleID
	u.EmailVerified = true
	u.UpdatedAt = r.store.now()
	r.store.users[u.ID] = u
	return r.withEmployee(u), nil
}

func (r *userRepository) findByEmail(email string) (user.User, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.store.users {
		if u.Email == email {
			return u, true
		}
	}
	return user.User{}, false
}

func (r *userRepository) withEmployee(u user.User) user.User {
	for _, e := range r.store.employees {
		if e.UserID != nil && *e.UserID == u.ID {
			id, name := e.ID, e.FullName
			u.EmployeeID = &id
			u.FullName = &name
			break
		}
	}
	return u
}
