package api

import (
	"alcyxob/swimtrack/internal/store"
	"net/http"

	"github.com/gin-gonic/gin"
)

// resolveStore returns the caller's hydrated session store. Hydration
// normally happened through the auth observer at login; after a server
// restart it happens lazily here, which is also where a missing profile
// gets backfilled.
func resolveStore(c *gin.Context, stores *store.Manager) (*store.Store, bool) {
	email, err := getEmailFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Email not found in context")
		return nil, false
	}
	accountID, _ := getAccountIDFromContext(c)

	st := stores.Get(email)
	if st.CurrentUser() == nil {
		st.FetchUserProfile(c.Request.Context(), accountID, email)
	}
	return st, true
}
