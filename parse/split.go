package parse

import "github.com/google/shlex"

// Split performs shell-style word splitting on s, without position
// tracking. Use a Tokenizer when offsets matter.
func Split(s string) ([]string, error) {
	args, err := shlex.Split(s)
	if err != nil {
		return nil, err
	}

	return args, nil
}
