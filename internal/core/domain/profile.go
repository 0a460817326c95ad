package domain

// IDType is the kind of fiscal identifier a client registers.
type IDType string

const (
	IDTypeJ IDType = "J"
	IDTypeG IDType = "G"
)

// Profile is the user's client/company profile as held by the backend.
type Profile struct {
	ID               string `json:"id,omitempty"`
	Name             string `json:"name"`
	IDType           IDType `json:"idType"`
	IDNumber         string `json:"idNumber"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	Role             Role   `json:"role,omitempty"`
	IsActive         bool   `json:"is_active"`
	IsIDNumberLocked bool   `json:"isIdNumberLocked"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name     string `json:"name"`
	IDType   IDType `json:"idType"`
	IDNumber string `json:"idNumber"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// CheckImmutable returns ErrProfileLocked when upd would change an
// identifier that p has already fixed: idType once set, idNumber once locked.
func (p *Profile) CheckImmutable(upd ProfileUpdate) error {
	if p == nil {
		return nil
	}
	if p.IDType != "" && upd.IDType != p.IDType {
		return ErrProfileLocked
	}
	if p.IsIDNumberLocked && upd.IDNumber != p.IDNumber {
		return ErrProfileLocked
	}
	return nil
}
