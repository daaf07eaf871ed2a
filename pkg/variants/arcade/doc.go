/*
Package arcade is the cyberpunk game dashboard deployment variant.

The remote authority broadcasts the full game state on the
game_state_update topic; each broadcast replaces the snapshot wholesale
(last write wins). There is no field-level merging on this variant.
*/
package arcade
