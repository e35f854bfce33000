package hash

import "golang.org/x/crypto/bcrypt"

// PasswordHasher is injected into the auth service so tests can substitute
// a deterministic implementation.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(hash, password string) bool
}

type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

func (b Bcrypt) Check(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
