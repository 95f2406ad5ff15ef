package lock

import "os"

func mkdirExcl(dir string) error {
	return os.Mkdir(dir, 0700)
}

func isExist(err error) bool {
	return os.IsExist(err)
}

func rmdir(dir string) error {
	err := os.Remove(dir)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
