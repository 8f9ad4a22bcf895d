package types

// UserProfile is the authenticated user as returned by the backend. The
// backend is inconsistent about which field carries the shop category, so both
// are decoded and EffectiveCategory picks the populated one.
type UserProfile struct {
	ID                 string `json:"id"`
	Name               string `json:"name,omitempty"`
	Email              string `json:"email,omitempty"`
	Category           string `json:"category,omitempty"`
	ShopCategory       string `json:"shopCategory,omitempty"`
	IsCategorySelected bool   `json:"isCategorySelected,omitempty"`
}

// EffectiveCategory returns the shop category regardless of which response
// field the backend populated.
func (u *UserProfile) EffectiveCategory() string {
	if u.ShopCategory != "" {
		return u.ShopCategory
	}
	return u.Category
}

// HasCategory reports whether the profile carries a usable shop category.
func (u *UserProfile) HasCategory() bool {
	return u.EffectiveCategory() != ""
}

// LoginRequest is the POST /auth/login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse decodes both observed response shapes: the user object and
// legacy top-level userId/category fields.
type LoginResponse struct {
	Token    string       `json:"token"`
	User     *UserProfile `json:"user,omitempty"`
	UserID   string       `json:"userId,omitempty"`
	Category string       `json:"category,omitempty"`
}

// EffectiveUserID returns the user id from whichever field carries it.
func (r *LoginResponse) EffectiveUserID() string {
	if r.User != nil && r.User.ID != "" {
		return r.User.ID
	}
	return r.UserID
}

// EffectiveCategory returns the category from whichever field carries it.
func (r *LoginResponse) EffectiveCategory() string {
	if r.User != nil && r.User.EffectiveCategory() != "" {
		return r.User.EffectiveCategory()
	}
	return r.Category
}

// SignupRequest is the POST /auth/signup payload.
type SignupRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ShopCategory string `json:"shopCategory,omitempty"`
}

// SignupResponse is the POST /auth/signup response.
type SignupResponse struct {
	Message string `json:"message"`
}

// UpdateCategoryRequest is the PUT /auth/update-category payload.
type UpdateCategoryRequest struct {
	ShopCategory string `json:"shopCategory"`
}

// CompleteSocialEmailRequest is the POST /auth/social/complete-email payload,
// carrying the pending token issued when the identity provider withheld an
// email.
type CompleteSocialEmailRequest struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// CompleteSocialEmailResponse is the POST /auth/social/complete-email response.
type CompleteSocialEmailResponse struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user,omitempty"`
}

// ShopCategories are the onboarding choices offered at category selection.
var ShopCategories = []string{
	"Computer Shop",
	"Grocery Store",
	"Clothing Store",
	"Pharmacy",
	"Restaurant",
}
