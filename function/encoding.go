package function

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/thisisjab/pinotbroker/querier"
)

func encodingRules() []Rule {
	return []Rule{
		{Name: "encodeUrl", Sig: Sig(String), Eval: encodeURL},
		{Name: "decodeUrl", Sig: Sig(String), Eval: decodeURL},
		{Name: "toBase64", Sig: Sig(Binary), Eval: toBase64},
		{Name: "fromBase64", Sig: Sig(String), Eval: fromBase64},
		{Name: "toUtf8", Sig: Sig(Binary), Eval: toUTF8},
		{Name: "fromUtf8", Sig: Sig(Binary), Eval: fromUTF8},
		{Name: "sha256", Sig: Sig(Binary), Eval: sha256Hex},
	}
}

// formEscaper turns url.QueryEscape output into HTML form encoding, which
// keeps '*' and escapes '~'.
var formEscaper = strings.NewReplacer("%2A", "*", "~", "%7E")

// encodeURL applies application/x-www-form-urlencoded escaping: spaces
// become '+', and everything but letters, digits and ".-_*" is percent
// encoded as UTF-8.
func encodeURL(_ Env, args []querier.Value) (querier.Value, error) {
	return querier.StringValue(formEscaper.Replace(url.QueryEscape(args[0].Text()))), nil
}

func decodeURL(_ Env, args []querier.Value) (querier.Value, error) {
	s, err := url.QueryUnescape(args[0].Text())
	if err != nil {
		return querier.Value{}, errors.Wrapf(err, "cannot decode %q", args[0].Text())
	}
	return querier.StringValue(s), nil
}

func toBase64(_ Env, args []querier.Value) (querier.Value, error) {
	return querier.StringValue(base64.StdEncoding.EncodeToString(args[0].Bytes())), nil
}

func fromBase64(_ Env, args []querier.Value) (querier.Value, error) {
	b, err := base64.StdEncoding.DecodeString(args[0].Text())
	if err != nil {
		return querier.Value{}, errors.Wrapf(err, "invalid base64 %q", args[0].Text())
	}
	return querier.BytesValue(b), nil
}

func toUTF8(_ Env, args []querier.Value) (querier.Value, error) {
	return querier.BytesValue(args[0].Bytes()), nil
}

func fromUTF8(_ Env, args []querier.Value) (querier.Value, error) {
	b := args[0].Bytes()
	if !utf8.Valid(b) {
		return querier.Value{}, errors.New("bytes are not valid UTF-8")
	}
	return querier.StringValue(string(b)), nil
}

func sha256Hex(_ Env, args []querier.Value) (querier.Value, error) {
	sum := sha256.Sum256(args[0].Bytes())
	return querier.StringValue(hex.EncodeToString(sum[:])), nil
}
