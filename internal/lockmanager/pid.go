package lockmanager

import "strconv"

func parsePID(holder string) (int, error) {
	return strconv.Atoi(holder)
}
