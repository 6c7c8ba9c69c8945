package commands

import "strings"

// Flag is one key=value argument of a command.
type Flag struct {
	Key   string
	Value string
}

// IsCommand reports whether the attendant text enters the command
// grammar instead of the relay.
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "&")
}

// parse splits "&name key=value ..." into the command name and its
// flags. A token without "=" continues the previous flag's value, so
// multi-word values ("s=suporte tecnico") survive the split.
func parse(text string) (string, []Flag, bool) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "&") {
		return "", nil, false
	}
	name := strings.ToLower(strings.TrimPrefix(fields[0], "&"))
	if name == "" {
		return "", nil, false
	}

	var flags []Flag
	for _, token := range fields[1:] {
		key, value, found := strings.Cut(token, "=")
		if found && key != "" {
			flags = append(flags, Flag{Key: strings.ToLower(key), Value: value})
			continue
		}
		if len(flags) > 0 {
			flags[len(flags)-1].Value += " " + token
		}
	}
	return name, flags, true
}

func flagValue(flags []Flag, key string) (string, bool) {
	for _, f := range flags {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}
