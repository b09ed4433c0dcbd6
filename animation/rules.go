package animation

func must(r Rule, err error) Rule {
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the palette animations of the game, in the order they are
// applied.
func Default() []Rule {
	return []Rule{
		must(NewCycle("Fizzy Drinks", 0xe3, []uint32{
			0xd49480, 0x4c1808, 0x6c2c18, 0x904834, 0xb06c54,
		}, true, 512)),
		must(NewCycle("Fire Cycle", 0xe8, []uint32{
			0xfcc400, 0xfc3c00, 0xfc5400, 0xfc6c00, 0xfc7c00, 0xfc9400, 0xfcac00,
		}, true, 512)),
		must(NewCycle("Light House", 0xf1, []uint32{
			0xf0d000, 0x000000, 0x000000, 0x000000,
		}, false, 256)),
		must(NewRadioTower("Radio Tower", 0xef, 0xff0000, 0x800000, 0x140000)),
		must(NewWaterCycle("Dark Water", 0xf5, [][]uint32{
			{0x204470, 0x244874, 0x284c78, 0x2c507c, 0x305480},
		}, [][]uint32{
			{0x1c6c7c, 0x207080, 0x247484, 0x287888, 0x2c7c8c},
		}, false, 320)),
		must(NewWaterCycle("Glittery Water", 0xfa, [][]uint32{
			{0xd8f4fc, 0x6484a8, 0x486490, 0x486490, 0x6484a8},
			{0xacd0e0, 0x486490, 0x486490, 0x486490, 0x84acc4},
			{0x84acc4, 0x486490, 0x486490, 0x486490, 0xacd0e0},
		}, [][]uint32{
			{0xd8f4fc, 0x74b4c4, 0x5ca4b8, 0x5ca4b8, 0x74b4c4},
			{0xb4dce8, 0x5ca4b8, 0x5ca4b8, 0x5ca4b8, 0x94c8d8},
			{0x94c8d8, 0x5ca4b8, 0x5ca4b8, 0x5ca4b8, 0xb4dce8},
		}, false, 128)),
	}
}
