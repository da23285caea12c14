package main

// The six demonstration scripts the driver ships with, runnable without an
// input file. Each exercises a different slice of the pipeline: builtins,
// loops and mutation, functions, generators, exception handling, and
// predicate assertions.
var scenarios = []string{
	`print("Hello, world!");`,

	`int i = 0;
while (i < 3) {
	print(i);
	i++;
}`,

	`int f(int x) {
	return x * x;
}
print(f(5));`,

	`int f() {
	yield 1;
	yield 2;
}
for (int v : f()) print(v);`,

	`try {
	throw "bad";
} catch (string s) {
	print(s);
} finally {
	print("done");
}`,

	`assert(2 + 2 == 5);`,
}
