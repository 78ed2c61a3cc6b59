package service

import "fmt"

func invalidPK(id uint) string {
	return fmt.Sprintf("Invalid pk %q - object does not exist.", fmt.Sprint(id))
}
