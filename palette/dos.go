package palette

// The DOS palette, except index 0xff which is #FFFFFF rather than #FCFCFC;
// both are the same color at 6 bits per channel. Animated indices are
// black, the animation rules fill them in.
var dos = [256]uint32{
	0x000000, 0x101010, 0x202020, 0x303030, 0x404040, 0x505050, 0x646464, 0x747474, // 00 - 07
	0x848484, 0x949494, 0xa8a8a8, 0xb8b8b8, 0xc8c8c8, 0xd8d8d8, 0xe8e8e8, 0xfcfcfc, // 08 - 0f
	0x343c48, 0x444c5c, 0x586070, 0x6c7484, 0x848c98, 0x9ca0ac, 0xb0b8c4, 0xccd0dc, // 10 - 17
	0x302c04, 0x403c0c, 0x504c14, 0x605c1c, 0x787840, 0x949464, 0xb0b084, 0xcccca8, // 18 - 1f
	0x482c04, 0x583c14, 0x68502c, 0x7c6848, 0x98845c, 0xb8a078, 0xd4bc94, 0xf4dcb0, // 20 - 27
	0x400004, 0x580410, 0x701020, 0x882034, 0xa0384c, 0xbc546c, 0xcc687c, 0xdc8490, // 28 - 2f
	0xec9ca4, 0xfcbcc0, 0xfcd400, 0xfce83c, 0xfcf880, 0x4c2800, 0x603c08, 0x74581c, // 30 - 37
	0x887438, 0x9c8850, 0xb09c6c, 0xc4b488, 0x441800, 0x602c04, 0x804408, 0x9c6010, // 38 - 3f
	0xb87818, 0xd49c20, 0xe8b810, 0xfcd400, 0xfcf880, 0xfcfcc0, 0x200400, 0x401408, // 40 - 47
	0x541c10, 0x6c2c1c, 0x803828, 0x944838, 0xa85c4c, 0xb86c58, 0xc4806c, 0xd49480, // 48 - 4f
	0x083400, 0x104000, 0x205004, 0x306004, 0x40700c, 0x548414, 0x68941c, 0x80a82c, // 50 - 57
	0x1c3418, 0x2c4420, 0x3c5830, 0x50683c, 0x687c4c, 0x80945c, 0x98b06c, 0xb4cc7c, // 58 - 5f
	0x103418, 0x20482c, 0x386048, 0x4c7458, 0x60886c, 0x78a488, 0x98c0a8, 0xb8dcc8, // 60 - 67
	0x201800, 0x381c00, 0x482804, 0x58340c, 0x684018, 0x7c542c, 0x8c6c40, 0xa08058, // 68 - 6f
	0x4c2810, 0x603418, 0x744428, 0x885438, 0xa46040, 0xb87050, 0xcc8060, 0xd49470, // 70 - 77
	0xe0a880, 0xecbc94, 0x501c04, 0x642814, 0x783828, 0x8c4c40, 0xa06460, 0xb88888, // 78 - 7f
	0x242844, 0x303454, 0x404064, 0x505074, 0x646488, 0x8484a4, 0xacacc0, 0xd4d4e0, // 80 - 87
	0x281470, 0x402c90, 0x5840ac, 0x684cc4, 0x7858e0, 0x8c68fc, 0xa088fc, 0xbca8fc, // 88 - 8f
	0x00186c, 0x002484, 0x0034a0, 0x0048b8, 0x0060d4, 0x1878dc, 0x3890e8, 0x58a8f0, // 90 - 97
	0x80c4fc, 0xbce0fc, 0x104060, 0x18506c, 0x286078, 0x347084, 0x508ca0, 0x74acc0, // 98 - 9f
	0x9cccdc, 0xccf0fc, 0xac3434, 0xd43434, 0xfc3434, 0xfc6458, 0xfc907c, 0xfcb8a0, // a0 - a7
	0xfcd8c8, 0xfcf4ec, 0x481470, 0x5c2c8c, 0x7044a8, 0x8c64c4, 0xa888e0, 0xccb4fc, // a8 - af
	0xccb4fc, 0xe8d0fc, 0x3c0000, 0x5c0000, 0x800000, 0xa00000, 0xc40000, 0xe00000, // b0 - b7
	0xfc0000, 0xfc5000, 0xfc6c00, 0xfc8800, 0xfca400, 0xfcc000, 0xfcdc00, 0xfcfc00, // b8 - bf
	0xcc8808, 0xe49004, 0xfc9c00, 0xfcb030, 0xfcc464, 0xfcd898, 0x081858, 0x0c2468, // c0 - c7
	0x14347c, 0x1c448c, 0x285ca4, 0x3878bc, 0x4898d8, 0x64ace0, 0x5c9c34, 0x6cb040, // c8 - cf
	0x7cc84c, 0x90e05c, 0xe0f4fc, 0xccf0fc, 0xb4dcec, 0x84bcd8, 0x5898ac, 0xd400d4, // d0 - d7
	0xd400d4, 0xd400d4, 0xd400d4, 0xd400d4, 0xd400d4, 0xd400d4, 0xd400d4, 0xd400d4, // d8 - df
	0xd400d4, 0xd400d4, 0xd400d4, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, // e0 - e7
	0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, // e8 - ef
	0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, // f0 - f7
	0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0xffffff, // f8 - ff
}
