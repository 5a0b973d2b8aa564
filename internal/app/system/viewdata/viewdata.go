// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown in the header and page titles.
const DefaultSiteName = "CCB Admin"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/admin", userName),
//	}
type BaseVM struct {
	SiteName string

	// User context (from the console session)
	IsLoggedIn bool
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string
}

// NewBaseVM creates a populated BaseVM. userName is the signed-in admin's
// display name, or "" when nobody is signed in.
func NewBaseVM(r *http.Request, title, backDefault, userName string) BaseVM {
	return BaseVM{
		SiteName:    DefaultSiteName,
		IsLoggedIn:  userName != "",
		UserName:    userName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
}
