package physics

// DistanceJoint 让两个刚体保持固定距离
type DistanceJoint struct {
	A, B   BodyHandle
	Length float64
	// Stiffness 每步修正比例，取值 (0,1]
	Stiffness float64
}

func (s *Space) solveJoints() {
	s.joints.each(func(_ handle, j *DistanceJoint) {
		a := s.mustBody(j.A)
		b := s.mustBody(j.B)
		wa, wb := a.invMass(), b.invMass()
		if wa+wb == 0 {
			return
		}
		d := b.Position.Sub(a.Position)
		dist := d.Len()
		if dist == 0 {
			return
		}
		k := j.Stiffness
		if k <= 0 || k > 1 {
			k = 1
		}
		n := d.Mul(1 / dist)
		corr := n.Mul((dist - j.Length) * k / (wa + wb))
		a.Position = a.Position.Add(corr.Mul(wa))
		b.Position = b.Position.Sub(corr.Mul(wb))

		rel := b.Velocity.Sub(a.Velocity).Dot(n)
		imp := n.Mul(rel * k / (wa + wb))
		a.Velocity = a.Velocity.Add(imp.Mul(wa))
		b.Velocity = b.Velocity.Sub(imp.Mul(wb))

		s.syncBody(a)
		s.syncBody(b)
	})
}
