package codec

// identifierDictionary is the fixed 256-entry packed-identifier dictionary.
// Byte values 0-254 index directly into this table; byte value 0xFF is never
// looked up here — it escapes the following byte as a literal ASCII
// character (see DecodeIdentifier). Entry 255 is carried for completeness
// but unreachable through the normal decode path.
var identifierDictionary = [256]string{
	"", // 0
	"in", // 1
	"et", // 2
	"it", // 3
	"init", // 4
	"init>", // 5
	"de", // 6
	"ce", // 7
	"get", // 8
	"cl", // 9
	"<init>", // 10
	"er", // 11
	"re", // 12
	"<cl", // 13
	"<clinit>", // 14
	"im", // 15
	"on", // 16
	"at", // 17
	"vi", // 18
	"en", // 19
	"vice", // 20
	"rim", // 21
	"net", // 22
	"device", // 23
	"ap", // 24
	"or", // 25
	"api", // 26
	"st", // 27
	"ion", // 28
	"pt", // 29
	"set", // 30
	"al", // 31
	"ro", // 32
	"an", // 33
	"ec", // 34
	"ed", // 35
	"$", // 36
	"ad", // 37
	"St", // 38
	"th", // 39
	"In", // 40
	"ss", // 41
	"ert", // 42
	"Pro", // 43
	"am", // 44
	"ry", // 45
	".", // 46
	"ord", // 47
	"0", // 48
	"1", // 49
	"2", // 50
	"3", // 51
	"4", // 52
	"5", // 53
	"6", // 54
	"7", // 55
	"8", // 56
	"9", // 57
	"ata", // 58
	"em", // 59
	"<", // 60
	"rypt", // 61
	">", // 62
	"ut", // 63
	"ar", // 64
	"A", // 65
	"B", // 66
	"C", // 67
	"D", // 68
	"E", // 69
	"F", // 70
	"G", // 71
	"H", // 72
	"I", // 73
	"J", // 74
	"K", // 75
	"L", // 76
	"M", // 77
	"N", // 78
	"O", // 79
	"P", // 80
	"Q", // 81
	"R", // 82
	"S", // 83
	"T", // 84
	"U", // 85
	"V", // 86
	"W", // 87
	"X", // 88
	"Y", // 89
	"Z", // 90
	"co", // 91
	"pert", // 92
	"ic", // 93
	"crypt", // 94
	"_", // 95
	"us", // 96
	"a", // 97
	"b", // 98
	"c", // 99
	"d", // 100
	"e", // 101
	"f", // 102
	"g", // 103
	"h", // 104
	"i", // 105
	"j", // 106
	"k", // 107
	"l", // 108
	"m", // 109
	"n", // 110
	"o", // 111
	"p", // 112
	"q", // 113
	"r", // 114
	"s", // 115
	"t", // 116
	"u", // 117
	"v", // 118
	"w", // 119
	"x", // 120
	"y", // 121
	"z", // 122
	"Propert", // 123
	"Property", // 124
	"ey", // 125
	"le", // 126
	"Data", // 127
	"va", // 128
	"se", // 129
	"ate", // 130
	"ava", // 131
	"ing", // 132
	"Rec", // 133
	"Val", // 134
	"java", // 135
	"ption", // 136
	"oc", // 137
	"ent", // 138
	"el", // 139
	"ang", // 140
	"io", // 141
	"id", // 142
	"um", // 143
	"rit", // 144
	"crypto", // 145
	"yst", // 146
	"ystem", // 147
	"Ex", // 148
	"Record", // 149
	"ch", // 150
	"Exce", // 151
	"Exception", // 152
	"read", // 153
	"is", // 154
	"gth", // 155
	"ort", // 156
	"ength", // 157
	"ist", // 158
	"int", // 159
	"Re", // 160
	"Key", // 161
	"un", // 162
	"mp", // 163
	"writ", // 164
	"write", // 165
	"Co", // 166
	"la", // 167
	"By", // 168
	"Length", // 169
	"ui", // 170
	"gr", // 171
	"ress", // 172
	"ac", // 173
	"ur", // 174
	"gram", // 175
	"to", // 176
	"ig", // 177
	"Fi", // 178
	"add", // 179
	"ex", // 180
	"dex", // 181
	"Datagram", // 182
	"PropertyVal", // 183
	"Ch", // 184
	"iv", // 185
	"Index", // 186
	"ring", // 187
	"ont", // 188
	"od", // 189
	"eld", // 190
	"Field", // 191
	"String", // 192
	"ase", // 193
	"ation", // 194
	"ect", // 195
	"ll", // 196
	"Of", // 197
	"ocus", // 198
	"ag", // 199
	"List", // 200
	"end", // 201
	"Ad", // 202
	"cld", // 203
	"cldc", // 204
	"lic", // 205
	"ra", // 206
	"up", // 207
	"comp", // 208
	"rec", // 209
	"ran", // 210
	"record", // 211
	"Focus", // 212
	"ow", // 213
	"rans", // 214
	"ext", // 215
	"te", // 216
	"ew", // 217
	"getP", // 218
	"il", // 219
	"ener", // 220
	"umb", // 221
	"op", // 222
	"iz", // 223
	"getM", // 224
	"lang", // 225
	"system", // 226
	"System", // 227
	"base", // 228
	"age", // 229
	"der", // 230
	"ip", // 231
	"No", // 232
	"He", // 233
	"key", // 234
	"Listener", // 235
	"ize", // 236
	"ub", // 237
	"thumb", // 238
	"Up", // 239
	"Stre", // 240
	"Id", // 241
	"pa", // 242
	"Stream", // 243
	"open", // 244
	"ess", // 245
	"Stat", // 246
	"out", // 247
	"ange", // 248
	"send", // 249
	"port", // 250
	"idth", // 251
	"essage", // 252
	"ition", // 253
	"ime", // 254
	"\xff", // 255
}
