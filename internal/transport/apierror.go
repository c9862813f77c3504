package transport

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// APIError é a falha reportada pelo servidor. O corpo de erro do backend tem
// duas formas: uma mensagem simples ({"message": …} ou {"error": …}) ou um
// objeto campo→mensagem vindo da validação. As duas são decodificadas
// explicitamente; nunca se depende da ordem de iteração do JSON.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for i, k := range keys {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(e.Fields[k])
		}
		return b.String()
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("erro na requisição (status %d)", e.Status)
}

// ServerMessage retorna a mensagem a exibir ao usuário, ou "" quando o
// servidor não mandou nada aproveitável.
func (e *APIError) ServerMessage() string {
	if len(e.Fields) > 0 || e.Message != "" {
		return e.Error()
	}
	return ""
}

func decodeAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	if len(body) == 0 {
		return e
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		if m, ok := rawString(obj["message"]); ok && m != "" {
			e.Message = m
			return e
		}
		if m, ok := rawString(obj["error"]); ok && m != "" {
			e.Message = m
			return e
		}
		// Objeto campo→mensagem: só aceita se todo valor for string.
		if len(obj) > 0 {
			fields := make(map[string]string, len(obj))
			allStrings := true
			for k, v := range obj {
				s, ok := rawString(v)
				if !ok {
					allStrings = false
					break
				}
				fields[k] = s
			}
			if allStrings {
				e.Fields = fields
				return e
			}
		}
		return e
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		e.Message = s
	}
	return e
}

func rawString(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
