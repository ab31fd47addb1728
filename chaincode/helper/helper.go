package helper

import (
	"caeth-contract/chaincode/constants"
	"caeth-contract/chaincode/fterr"
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/holiman/uint256"
	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
)

var (
	accountIdRe       = regexp.MustCompile(constants.AccountIdRegex)
	contractAddressRe = regexp.MustCompile(constants.ContractAddressRegex)
	isContractRe      = regexp.MustCompile("^" + constants.ContractAddressRegex + "$")
	decimalRe         = regexp.MustCompile(`^[0-9]+$`)
)

// IdentityProvider is the part of the transaction context that exposes the
// submitting client's certificate identity.
type IdentityProvider interface {
	GetClientIdentity() cid.ClientIdentity
}

func IsValidAccountId(account string) bool {
	if len(account) < constants.MinAccountIdLen || len(account) > constants.MaxAccountIdLen {
		return false
	}
	return accountIdRe.MatchString(account)
}

func ValidateAccountId(account string) error {
	if !IsValidAccountId(account) {
		return fterr.ErrInvalidAccountId.Withf("%q", account)
	}
	return nil
}

func IsContractAddress(address string) bool {
	return isContractRe.MatchString(address)
}

func FindContractAddress(data string) string {
	return contractAddressRe.FindString(data)
}

func FilterPrintableASCII(input string) string {
	var result []rune
	for _, char := range input {
		if char >= 33 && char <= 127 {
			result = append(result, char)
		}
	}
	return string(result)
}

// GetUserId extracts the account id from the CN of the submitting client's
// x509 certificate.
func GetUserId(ctx IdentityProvider) (string, error) {
	b64ID, err := ctx.GetClientIdentity().GetID()
	if err != nil {
		return "", fterr.NewInternalError(err, "failed to read clientID", http.StatusInternalServerError)
	}

	decodeID, err := base64.StdEncoding.DecodeString(b64ID)
	if err != nil {
		return "", fterr.NewInternalError(err, "failed to base64 decode clientID", http.StatusInternalServerError)
	}

	completeId := string(decodeID)
	start := strings.Index(completeId, "x509::CN=")
	if start < 0 {
		return "", fterr.ErrInvalidAccountId.Withf("client id %q has no CN", completeId)
	}
	userId := completeId[start+len("x509::CN="):]
	if end := strings.Index(userId, ","); end >= 0 {
		userId = userId[:end]
	}
	if err := ValidateAccountId(userId); err != nil {
		return "", err
	}
	return userId, nil
}

// ParseU128 parses a base-10 string into a value no larger than 2^128-1.
func ParseU128(amount string) (*uint256.Int, error) {
	if !decimalRe.MatchString(amount) {
		return nil, fterr.ErrInvalidAmount.Withf("%q", amount)
	}
	v, err := uint256.FromDecimal(amount)
	if err != nil || v.BitLen() > 128 {
		return nil, fterr.ErrInvalidAmount.Withf("%q", amount)
	}
	return v, nil
}

// ParseDeposit is ParseU128 except that an empty string means nothing attached.
func ParseDeposit(deposit string) (*uint256.Int, error) {
	if deposit == "" {
		return new(uint256.Int), nil
	}
	return ParseU128(deposit)
}

func AddU128(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || sum.BitLen() > 128 {
		return nil, fterr.ErrBalanceOverflow.Withf("%s + %s", a.Dec(), b.Dec())
	}
	return sum, nil
}

func MinU128(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return a.Clone()
	}
	return b.Clone()
}

func EncodeU128(v *uint256.Int) []byte {
	full := v.Bytes32()
	out := make([]byte, constants.U128Bytes)
	copy(out, full[32-constants.U128Bytes:])
	return out
}

func DecodeU128(b []byte) (*uint256.Int, error) {
	if len(b) != constants.U128Bytes {
		return nil, fmt.Errorf("expected %d bytes, got %d", constants.U128Bytes, len(b))
	}
	return new(uint256.Int).SetBytes(b), nil
}
