package main

import "github.com/devourerOfBits80/pacaur/internal/pacaur"

func main() {
	pacaur.Main()
}
