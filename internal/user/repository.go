package user

import (
	"errors"
	"sync"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidGoals       = errors.New("nutrition goals must not be negative")
	ErrInvalidRestriction = errors.New("restriction name is required")
)

type Repository interface {
	GetByID(id int) (User, error)
	GetByEmail(email string) (User, error)
	Create(user User) (User, error)
	Update(id int, user User) (User, error)
	Delete(id int) error
}

// InMemoryRepository indexes users by id and by email.
type InMemoryRepository struct {
	mu      sync.RWMutex
	users   map[int]User
	byEmail map[string]int
	nextID  int
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{
		users:   make(map[int]User, len(seed)),
		byEmail: make(map[string]int, len(seed)),
		nextID:  1,
	}
	for _, u := range seed {
		repo.put(u)
		if u.ID >= repo.nextID {
			repo.nextID = u.ID + 1
		}
	}
	return repo
}

func (r *InMemoryRepository) GetByID(id int) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return clone(u), nil
}

func (r *InMemoryRepository) GetByEmail(email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return clone(r.users[id]), nil
}

func (r *InMemoryRepository) Create(user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return User{}, ErrEmailExists
	}
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	}
	r.put(user)
	return clone(user), nil
}

// Update replaces the profile fields of the stored user. An empty password or
// updateAt keeps the stored value.
func (r *InMemoryRepository) Update(id int, update User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if owner, taken := r.byEmail[update.Email]; taken && owner != id {
		return User{}, ErrEmailExists
	}

	update.ID = id
	update.CreatedAt = current.CreatedAt
	if update.Password == "" {
		update.Password = current.Password
	}
	if update.UpdatedAt == "" {
		update.UpdatedAt = current.UpdatedAt
	}
	delete(r.byEmail, current.Email)
	r.put(update)
	return clone(update), nil
}

func (r *InMemoryRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	delete(r.byEmail, u.Email)
	return nil
}

func (r *InMemoryRepository) put(u User) {
	r.users[u.ID] = clone(u)
	if u.Email != "" {
		r.byEmail[u.Email] = u.ID
	}
}

func clone(u User) User {
	u.Restrictions = append([]string(nil), u.Restrictions...)
	if u.Restrictions == nil {
		u.Restrictions = []string{}
	}
	return u
}
