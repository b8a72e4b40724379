package session

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"qc-console/internal/model"
	"qc-console/pkg/apierror"
)

// Claim keys are fixed by the backend's token issuer (WS-* namespaces plus
// one custom claim). The payroll number is the only optional one.
const (
	claimSubject = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	claimName    = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	claimRole    = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
	claimPayroll = "PayRollNumber"
)

// decodeUser extracts the user identity from the token's payload segment.
// The signature is NOT verified here: the token was already verified by the
// backend when it was issued, and every backend call re-checks it. This is a
// structural decode only, and it fails closed: a token that parses but lacks
// any required claim is rejected the same as a malformed one.
func decodeUser(token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apierror.Decode("INVALID_TOKEN", "token is empty", "")
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, apierror.Decode("INVALID_TOKEN", "token payload cannot be decoded", err.Error())
	}

	user := &model.User{}
	user.ID, _ = claims[claimSubject].(string)
	user.Name, _ = claims[claimName].(string)
	user.Role, _ = claims[claimRole].(string)
	user.PayrollNumber, _ = claims[claimPayroll].(string)

	if user.ID == "" || user.Name == "" || user.Role == "" {
		return nil, apierror.New(apierror.KindDecode, "INVALID_TOKEN", "token is missing required claims", "", http.StatusUnauthorized)
	}

	return user, nil
}
