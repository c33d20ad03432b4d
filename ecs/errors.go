package ecs

import "github.com/rotisserie/eris"

var (
	ErrEntityNotFound           = eris.New("entity does not exist")
	ErrComponentNotOnEntity     = eris.New("component not on entity")
	ErrComponentAlreadyOnEntity = eris.New("component already on entity")
)
