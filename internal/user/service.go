package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is the bcrypt cost for new passwords.
var hashCost = bcrypt.DefaultCost

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) GetByID(id int) (User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}

func (s *Service) Register(user User) (User, error) {
	user.Email = normalizeEmail(user.Email)
	if _, err := s.repo.GetByEmail(user.Email); err == nil {
		return User{}, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), hashCost)
	if err != nil {
		return User{}, err
	}

	user.Password = string(hashed)
	if user.Goals == (NutritionGoals{}) {
		user.Goals = DefaultGoals()
	}
	if user.Restrictions == nil {
		user.Restrictions = []string{}
	}
	now := s.timestamp()
	user.CreatedAt = now
	user.UpdatedAt = now
	return s.repo.Create(user)
}

func (s *Service) Authenticate(email, password string) (User, error) {
	user, err := s.repo.GetByEmail(normalizeEmail(email))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if !looksLikeBcrypt(user.Password) || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// ProfileUpdate carries the profile fields a client may change. Nil fields are
// left untouched.
type ProfileUpdate struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
}

func (s *Service) UpdateProfile(id int, update ProfileUpdate) (User, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return User{}, err
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if email != existing.Email {
			if _, err := s.repo.GetByEmail(email); err == nil {
				return User{}, ErrEmailExists
			}
			existing.Email = email
		}
	}
	if update.FirstName != nil {
		existing.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		existing.LastName = *update.LastName
	}
	if update.Phone != nil {
		existing.Phone = *update.Phone
	}
	if update.DateOfBirth != nil {
		existing.DateOfBirth = *update.DateOfBirth
	}
	return s.save(id, existing)
}

func (s *Service) SetGoals(id int, goals NutritionGoals) (User, error) {
	if goals.Calories < 0 || goals.Protein < 0 || goals.Fat < 0 || goals.Carbs < 0 {
		return User{}, ErrInvalidGoals
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return User{}, err
	}
	existing.Goals = goals
	return s.save(id, existing)
}

// SetRestriction enables or disables a dietary restriction. Known names are
// stored in their canonical spelling.
func (s *Service) SetRestriction(id int, name string, active bool) (User, error) {
	name = canonicalRestriction(name)
	if name == "" {
		return User{}, ErrInvalidRestriction
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return User{}, err
	}

	kept := make([]string, 0, len(existing.Restrictions)+1)
	for _, r := range existing.Restrictions {
		if !strings.EqualFold(r, name) {
			kept = append(kept, r)
		}
	}
	if active {
		kept = append(kept, name)
	}
	existing.Restrictions = kept
	return s.save(id, existing)
}

// ActiveRestrictions returns the enabled restriction names of a user.
func (s *Service) ActiveRestrictions(id int) ([]string, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return u.Restrictions, nil
}

// AvailableRestrictions lists the known restrictions the user has not enabled.
func (s *Service) AvailableRestrictions(id int) ([]Restriction, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	out := make([]Restriction, 0, len(KnownRestrictions))
	for _, name := range KnownRestrictions {
		if !containsFold(u.Restrictions, name) {
			out = append(out, Restriction{Name: name})
		}
	}
	return out, nil
}

func (s *Service) save(id int, u User) (User, error) {
	u.UpdatedAt = s.timestamp()
	return s.repo.Update(id, u)
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func canonicalRestriction(name string) string {
	name = strings.TrimSpace(name)
	for _, known := range KnownRestrictions {
		if strings.EqualFold(known, name) {
			return known
		}
	}
	return name
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func looksLikeBcrypt(value string) bool {
	return len(value) > 4 && value[0:2] == "$2"
}

// Emails are stored trimmed and lower-cased so sign-in is case insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
